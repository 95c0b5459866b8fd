package sequence

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Allocator issues unique human-facing numbers and codes for one entity's
// numbering streams. It is stateless; all counter state lives behind Store.
type Allocator struct {
	store Store
	probe CodeProbe
}

// NewAllocator creates a new allocator
func NewAllocator(store Store, probe CodeProbe) *Allocator {
	return &Allocator{store: store, probe: probe}
}

// Next issues the next value for an entity's series. The first allocation on
// a fresh series yields 1. Concurrent calls on the same (entity, series)
// never receive the same value; the increment is atomic in storage.
func (a *Allocator) Next(ctx context.Context, entityID uuid.UUID, seriesKey string) (int64, error) {
	if entityID == uuid.Nil {
		return 0, shared.NewDomainError("INVALID_ENTITY", "Sequence must be scoped to an entity")
	}
	if seriesKey == "" {
		return 0, shared.NewDomainError("INVALID_SERIES", "Series key cannot be empty")
	}

	return a.store.Increment(ctx, entityID, seriesKey)
}

// NextNumber issues the next value for the series and renders it with the
// given prefix, e.g. "INV-00042".
func (a *Allocator) NextNumber(ctx context.Context, entityID uuid.UUID, seriesKey, prefix string) (string, error) {
	value, err := a.Next(ctx, entityID, seriesKey)
	if err != nil {
		return "", err
	}
	return FormatNumber(prefix, value), nil
}

// reservedProbe layers a set of not-yet-persisted codes over the storage
// probe, so codes allocated ahead of a batched write still collide.
type reservedProbe struct {
	inner    CodeProbe
	reserved map[string]bool
}

func (p reservedProbe) CodeExists(ctx context.Context, entityID uuid.UUID, seriesKey, code string) (bool, error) {
	if p.reserved[code] {
		return true, nil
	}
	return p.inner.CodeExists(ctx, entityID, seriesKey, code)
}

// WithReserved returns an allocator that also treats the codes in the given
// set as taken. The caller owns the set and adds each allocated code to it;
// use when several codes are issued before a single transactional write.
func (a *Allocator) WithReserved(reserved map[string]bool) *Allocator {
	return &Allocator{
		store: a.store,
		probe: reservedProbe{inner: a.probe, reserved: reserved},
	}
}

// AllocateRefCode issues a unique short reference code within an entity's
// series. With an explicit code the format is validated before any probe and
// the code is used verbatim if free. Otherwise a base candidate is derived
// from the names and, on collision, the final character walks the alphabet.
// At most refCodeAlphabetSize probes are made before the caller is asked to
// supply a code manually. The walk never silently returns a colliding value.
func (a *Allocator) AllocateRefCode(ctx context.Context, entityID uuid.UUID, seriesKey, primaryName, companyName, explicit string) (string, error) {
	if entityID == uuid.Nil {
		return "", shared.NewDomainError("INVALID_ENTITY", "Sequence must be scoped to an entity")
	}

	if explicit != "" {
		if err := ValidateRefCode(explicit); err != nil {
			return "", err
		}
		taken, err := a.probe.CodeExists(ctx, entityID, seriesKey, explicit)
		if err != nil {
			return "", err
		}
		if taken {
			return "", shared.NewDomainError("ALREADY_EXISTS", "Code "+explicit+" is already in use")
		}
		return explicit, nil
	}

	base := DeriveRefCode(primaryName, companyName)
	for attempt := 0; attempt < refCodeAlphabetSize; attempt++ {
		candidate := refCodeCandidate(base, attempt)
		taken, err := a.probe.CodeExists(ctx, entityID, seriesKey, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", shared.ErrSequenceExhausted
}
