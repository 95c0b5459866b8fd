package finance

import (
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentKind distinguishes the record types that carry a sequence-issued
// code and derived amounts.
type DocumentKind string

const (
	DocumentKindInvoice   DocumentKind = "invoice"
	DocumentKindJob       DocumentKind = "job"
	DocumentKindTimesheet DocumentKind = "timesheet"
)

// DocumentLine is a single line amount on a document
type DocumentLine struct {
	shared.BaseRecord
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500)"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (DocumentLine) TableName() string {
	return "document_lines"
}

// Document is a monetary record (invoice, job, timesheet) owned by exactly
// one entity. Its code comes from the sequence allocator and is immutable
// once issued, even through later edits; its monetary fields are a pure
// function of the stored inputs and are recomputed whenever an input changes.
type Document struct {
	shared.EntityAggregateRoot
	Kind DocumentKind `gorm:"type:varchar(20);not null"`
	// ClientID is the counterparty. The client's tax status is snapshotted
	// into TaxStatus at issue time rather than read through this link.
	ClientID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Code uniqueness is per (entity_id, kind, code); the composite unique
	// index lives in the migration since entity_id sits on the embedded root.
	Code           string          `gorm:"type:varchar(50);not null;index"`
	Lines          []DocumentLine  `gorm:"foreignKey:DocumentID"`
	TaxStatus      TaxStatus       `gorm:"type:varchar(20);not null"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	ReverseCharge  bool            `gorm:"not null;default:false"`
	Discount       DiscountSpec    `gorm:"embedded;embeddedPrefix:discount_"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmt    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmt         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	WithholdingAmt decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmt       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates a document without a code; the code is assigned once
// by the creation flow after the sequence allocator has issued it.
func NewDocument(entityID, clientID uuid.UUID, kind DocumentKind, status TaxStatus, taxRate decimal.Decimal, reverseCharge bool, discount DiscountSpec) (*Document, error) {
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Document must belong to an entity")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Document must reference a client")
	}
	if !status.IsValid() {
		return nil, shared.ErrUnknownTaxStatus
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	if err := discount.Validate(); err != nil {
		return nil, err
	}

	doc := &Document{
		EntityAggregateRoot: shared.NewEntityAggregateRoot(entityID),
		Kind:                kind,
		ClientID:            clientID,
		TaxStatus:           status,
		TaxRate:             taxRate,
		ReverseCharge:       reverseCharge,
		Discount:            discount,
	}

	if err := doc.Recompute(); err != nil {
		return nil, err
	}

	return doc, nil
}

// AssignCode sets the document's code exactly once. Reassignment is refused:
// an issued identifier is permanent even when the document is later edited.
func (d *Document) AssignCode(code string) error {
	if d.Code != "" {
		return shared.NewDomainError("CODE_ALREADY_ASSIGNED", "Document code is immutable once issued")
	}
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Document code cannot be empty")
	}

	d.Code = code
	d.UpdatedAt = time.Now()

	return nil
}

// AddLine appends a line amount and recomputes the monetary fields
func (d *Document) AddLine(description string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Line amount cannot be negative")
	}

	line := DocumentLine{
		BaseRecord:  shared.NewBaseRecord(),
		DocumentID:  d.ID,
		Description: description,
		Amount:      amount,
	}
	d.Lines = append(d.Lines, line)
	d.IncrementVersion()

	return d.Recompute()
}

// RemoveLine deletes a line by ID and recomputes the monetary fields
func (d *Document) RemoveLine(lineID uuid.UUID) error {
	kept := make([]DocumentLine, 0, len(d.Lines))
	found := false
	for _, line := range d.Lines {
		if line.ID == lineID {
			found = true
			continue
		}
		kept = append(kept, line)
	}
	if !found {
		return shared.ErrNotFound
	}

	d.Lines = kept
	d.IncrementVersion()

	return d.Recompute()
}

// SetDiscount replaces the discount spec and recomputes
func (d *Document) SetDiscount(spec DiscountSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	d.Discount = spec
	d.IncrementVersion()

	return d.Recompute()
}

// SetTaxStatus replaces the counterparty tax status and recomputes
func (d *Document) SetTaxStatus(status TaxStatus) error {
	if !status.IsValid() {
		return shared.ErrUnknownTaxStatus
	}

	d.TaxStatus = status
	d.IncrementVersion()

	return d.Recompute()
}

// SetReverseCharge toggles the reverse-charge flag and recomputes
func (d *Document) SetReverseCharge(on bool) error {
	d.ReverseCharge = on
	d.IncrementVersion()

	return d.Recompute()
}

// LineAmounts returns the raw line amounts in order
func (d *Document) LineAmounts() []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(d.Lines))
	for i, line := range d.Lines {
		amounts[i] = line.Amount
	}
	return amounts
}

// Recompute re-derives the stored monetary fields from the stored inputs.
// It is called on every input change; stored totals therefore always equal
// a fresh derivation.
func (d *Document) Recompute() error {
	breakdown, err := Derive(d.LineAmounts(), d.TaxStatus, d.TaxRate, d.ReverseCharge, d.Discount)
	if err != nil {
		return err
	}

	d.Subtotal = breakdown.Subtotal
	d.DiscountAmt = breakdown.Discount
	d.TaxAmt = breakdown.Tax
	d.WithholdingAmt = breakdown.Withholding
	d.TotalAmt = breakdown.Total
	d.UpdatedAt = time.Now()

	return nil
}

// Breakdown returns the stored monetary fields as a Breakdown
func (d *Document) Breakdown() Breakdown {
	return Breakdown{
		Subtotal:    d.Subtotal,
		Discount:    d.DiscountAmt,
		Tax:         d.TaxAmt,
		Withholding: d.WithholdingAmt,
		Total:       d.TotalAmt,
	}
}

// Verify recomputes the breakdown from the stored inputs and reports whether
// it matches the stored fields. Auditors use it to detect drift.
func (d *Document) Verify() (bool, error) {
	fresh, err := Derive(d.LineAmounts(), d.TaxStatus, d.TaxRate, d.ReverseCharge, d.Discount)
	if err != nil {
		return false, err
	}
	return d.Breakdown().Equal(fresh), nil
}
