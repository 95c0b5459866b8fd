package finance

import (
	"strings"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TaxStatus is the counterparty's verification status, which fixes the
// withholding tier deducted from gross payment. The set is closed: an
// unknown status is a data-integrity fault and is never coerced to a tier.
type TaxStatus string

const (
	// TaxStatusUnverified withholds 30% of gross.
	TaxStatusUnverified TaxStatus = "unverified"
	// TaxStatusVerifiedNet withholds 20% of gross.
	TaxStatusVerifiedNet TaxStatus = "verified_net"
	// TaxStatusVerifiedGross withholds nothing.
	TaxStatusVerifiedGross TaxStatus = "verified_gross"
)

// withholdingRates maps each status to its withholding percentage.
var withholdingRates = map[TaxStatus]decimal.Decimal{
	TaxStatusUnverified:    decimal.NewFromInt(30),
	TaxStatusVerifiedNet:   decimal.NewFromInt(20),
	TaxStatusVerifiedGross: decimal.Zero,
}

// ParseTaxStatus converts a string into a TaxStatus, rejecting anything
// outside the enumerated set.
func ParseTaxStatus(s string) (TaxStatus, error) {
	st := TaxStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", shared.ErrUnknownTaxStatus
	}
	return st, nil
}

// IsValid reports whether the status is one of the three enumerated values
func (s TaxStatus) IsValid() bool {
	_, ok := withholdingRates[s]
	return ok
}

// String returns the wire representation of the status
func (s TaxStatus) String() string {
	return string(s)
}

// WithholdingRate returns the withholding percentage for the status
func (s TaxStatus) WithholdingRate() (decimal.Decimal, error) {
	rate, ok := withholdingRates[s]
	if !ok {
		return decimal.Decimal{}, shared.ErrUnknownTaxStatus
	}
	return rate, nil
}
