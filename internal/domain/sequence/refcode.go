package sequence

import (
	"strings"

	"github.com/fieldops/backend/internal/domain/shared"
)

// Reference-code constants. The retry bound equals the alphabet size because
// the collision walk substitutes the final character through the alphabet:
// after 26 attempts every candidate reachable from the base has been probed.
const (
	// RefCodeLength is the fixed length of a client reference code.
	RefCodeLength = 3
	// refCodeAlphabetSize is the number of letters the final-character walk
	// can substitute, and therefore the collision retry bound.
	refCodeAlphabetSize = 26
	// refCodeFiller pads derived codes that come up short.
	refCodeFiller = 'X'
	// refCodeSentinel is used when the input text yields nothing usable.
	refCodeSentinel = "XXX"
)

// refCodeStopWords are dropped before deriving a base candidate: articles,
// conjunctions, and legal-entity suffixes that carry no identity.
var refCodeStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "of": {},
	"ltd": {}, "limited": {}, "llp": {}, "plc": {}, "inc": {},
	"co": {}, "company": {},
}

// ValidateRefCode rejects any caller-supplied code that is not exactly
// RefCodeLength uppercase letters. It runs before any storage probe.
func ValidateRefCode(code string) error {
	if len(code) != RefCodeLength {
		return shared.ErrInvalidCodeFormat
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return shared.ErrInvalidCodeFormat
		}
	}
	return nil
}

// DeriveRefCode computes the deterministic base candidate for a client's
// reference code. The company name is preferred over the personal name when
// present. The derivation is pure: the same input always yields the same
// candidate.
//
// Rule: split on whitespace, drop stop words, keep only letters, then
//
//	3+ words -> initials of the first three
//	2 words  -> first letter of word one + first two letters of word two
//	1 word   -> its first three letters
//	nothing  -> the sentinel code
//
// padded on the right with the filler letter when short.
func DeriveRefCode(primaryName, companyName string) string {
	source := companyName
	if strings.TrimSpace(source) == "" {
		source = primaryName
	}

	words := usableWords(source)

	var candidate string
	switch {
	case len(words) >= 3:
		candidate = initial(words[0]) + initial(words[1]) + initial(words[2])
	case len(words) == 2:
		candidate = initial(words[0]) + prefix(words[1], 2)
	case len(words) == 1:
		candidate = prefix(words[0], RefCodeLength)
	default:
		return refCodeSentinel
	}

	for len(candidate) < RefCodeLength {
		candidate += string(refCodeFiller)
	}
	return candidate
}

// refCodeCandidate returns the attempt-th candidate derived from base by
// walking the final character through the alphabet, wrapping at 'Z'.
// Attempt 0 is the base itself; attempts 0..25 cover every reachable code
// exactly once.
func refCodeCandidate(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	last := base[RefCodeLength-1]
	next := byte('A' + (int(last-'A')+attempt)%refCodeAlphabetSize)
	return base[:RefCodeLength-1] + string(next)
}

// usableWords splits text into uppercase letter-only words with stop words
// removed.
func usableWords(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := refCodeStopWords[strings.ToLower(stripNonLetters(f))]; stop {
			continue
		}
		w := strings.ToUpper(stripNonLetters(f))
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func stripNonLetters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func initial(word string) string {
	return word[:1]
}

func prefix(word string, n int) string {
	if len(word) < n {
		return word
	}
	return word[:n]
}
