// Package finance implements the deterministic financial derivation rules:
// withholding, tax, discount, and total computation for monetary documents.
//
// Every function here is pure and decimal-exact. A document's stored totals
// must be re-derivable byte-for-byte from its stored inputs; that property
// is what makes stored amounts auditable, and it is why nothing in this
// package reads a clock, a config, or a database.
package finance

import (
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// DiscountType selects how a discount is expressed
type DiscountType string

const (
	// DiscountNone means no discount applies.
	DiscountNone DiscountType = ""
	// DiscountFixed is an absolute amount off the subtotal.
	DiscountFixed DiscountType = "fixed"
	// DiscountPercent is a percentage of the subtotal.
	DiscountPercent DiscountType = "percent"
)

// DiscountSpec expresses a document's discount: a fixed amount or a
// percentage of the subtotal, never both. The zero value means no discount.
type DiscountSpec struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// NoDiscount returns the empty discount spec
func NoDiscount() DiscountSpec {
	return DiscountSpec{}
}

// FixedDiscount returns a fixed-amount discount spec
func FixedDiscount(amount decimal.Decimal) DiscountSpec {
	return DiscountSpec{Type: DiscountFixed, Value: amount}
}

// PercentDiscount returns a percentage discount spec
func PercentDiscount(percent decimal.Decimal) DiscountSpec {
	return DiscountSpec{Type: DiscountPercent, Value: percent}
}

// Validate rejects malformed discount specs
func (d DiscountSpec) Validate() error {
	switch d.Type {
	case DiscountNone:
		if !d.Value.IsZero() {
			return shared.NewDomainError("INVALID_DISCOUNT", "Discount value requires a discount type")
		}
	case DiscountFixed:
		if d.Value.IsNegative() {
			return shared.NewDomainError("INVALID_DISCOUNT", "Discount amount cannot be negative")
		}
	case DiscountPercent:
		if d.Value.IsNegative() || d.Value.GreaterThan(oneHundred) {
			return shared.NewDomainError("INVALID_DISCOUNT", "Discount percentage must be between 0 and 100")
		}
	default:
		return shared.NewDomainError("INVALID_DISCOUNT", "Unknown discount type: "+string(d.Type))
	}
	return nil
}

// Withholding computes the amount withheld from a gross payment based on the
// counterparty's verification status: 30% unverified, 20% verified-net, zero
// verified-gross. Unknown statuses are an error, never a default tier.
func Withholding(gross decimal.Decimal, status TaxStatus) (decimal.Decimal, error) {
	rate, err := status.WithholdingRate()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return gross.Mul(rate).Div(oneHundred), nil
}

// Tax computes amount * rate / 100. A set reverse-charge flag forces the tax
// to zero regardless of the configured rate; the flag and the rate are
// mutually exclusive in effect, not additive.
func Tax(amount, rate decimal.Decimal, reverseCharge bool) decimal.Decimal {
	if reverseCharge {
		return decimal.Zero
	}
	return amount.Mul(rate).Div(oneHundred)
}

// Discount computes the discount amount for a subtotal. Discounts apply
// before tax: the taxable base is the post-discount subtotal.
func Discount(subtotal decimal.Decimal, spec DiscountSpec) (decimal.Decimal, error) {
	if err := spec.Validate(); err != nil {
		return decimal.Decimal{}, err
	}

	switch spec.Type {
	case DiscountFixed:
		return spec.Value, nil
	case DiscountPercent:
		return subtotal.Mul(spec.Value).Div(oneHundred), nil
	default:
		return decimal.Zero, nil
	}
}

// Total composes the final amount. The order is load-bearing: the discount
// reduces the taxable base, and withholding is deducted only after tax has
// been added. It never compounds with tax or discount.
func Total(subtotal, discount, tax, withholding decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discount).Add(tax).Sub(withholding)
}

// Breakdown is the full set of derived monetary fields for a document
type Breakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	Withholding decimal.Decimal `json:"withholding"`
	Total       decimal.Decimal `json:"total"`
}

// Derive computes the complete breakdown for a set of line amounts:
// subtotal, discount (pre-tax), tax on the discounted base, withholding on
// the discounted base, and the composed total. Pure: identical inputs yield
// an identical breakdown.
func Derive(lines []decimal.Decimal, status TaxStatus, taxRate decimal.Decimal, reverseCharge bool, discount DiscountSpec) (Breakdown, error) {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line)
	}

	discountAmount, err := Discount(subtotal, discount)
	if err != nil {
		return Breakdown{}, err
	}

	taxable := subtotal.Sub(discountAmount)
	taxAmount := Tax(taxable, taxRate, reverseCharge)

	withheld, err := Withholding(taxable, status)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Subtotal:    subtotal,
		Discount:    discountAmount,
		Tax:         taxAmount,
		Withholding: withheld,
		Total:       Total(subtotal, discountAmount, taxAmount, withheld),
	}, nil
}

// Equal reports whether two breakdowns carry identical amounts
func (b Breakdown) Equal(other Breakdown) bool {
	return b.Subtotal.Equal(other.Subtotal) &&
		b.Discount.Equal(other.Discount) &&
		b.Tax.Equal(other.Tax) &&
		b.Withholding.Equal(other.Withholding) &&
		b.Total.Equal(other.Total)
}
