package billing

import (
	"time"

	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineInput is one line amount on a document request
type LineInput struct {
	Description string          `json:"description" binding:"max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// CreateDocumentRequest represents a request to create an invoice, job or
// timesheet. The tax status normally comes from the client; callers may pin
// it explicitly for edge cases.
type CreateDocumentRequest struct {
	Kind          string           `json:"kind" binding:"required,oneof=invoice job timesheet"`
	ClientID      uuid.UUID        `json:"client_id" binding:"required"`
	Lines         []LineInput      `json:"lines" binding:"required,min=1,dive"`
	TaxRate       *decimal.Decimal `json:"tax_rate"`
	ReverseCharge bool             `json:"reverse_charge"`
	DiscountType  string           `json:"discount_type" binding:"omitempty,oneof=fixed percent"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
}

// UpdateDocumentRequest represents edits to a document's derivation inputs.
// The issued code is immutable and absent on purpose.
type UpdateDocumentRequest struct {
	Lines         []LineInput      `json:"lines" binding:"omitempty,min=1,dive"`
	TaxStatus     *string          `json:"tax_status" binding:"omitempty,oneof=unverified verified_net verified_gross"`
	ReverseCharge *bool            `json:"reverse_charge"`
	DiscountType  *string          `json:"discount_type" binding:"omitempty,oneof=none fixed percent"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
}

// LineResponse is one line in a document response
type LineResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID             uuid.UUID       `json:"id"`
	EntityID       uuid.UUID       `json:"entity_id"`
	ClientID       uuid.UUID       `json:"client_id"`
	Kind           string          `json:"kind"`
	Code           string          `json:"code"`
	Lines          []LineResponse  `json:"lines"`
	TaxStatus      string          `json:"tax_status"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	ReverseCharge  bool            `json:"reverse_charge"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmt    decimal.Decimal `json:"discount_amount"`
	TaxAmt         decimal.Decimal `json:"tax_amount"`
	WithholdingAmt decimal.Decimal `json:"withholding_amount"`
	TotalAmt       decimal.Decimal `json:"total_amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toDocumentResponse(doc *finance.Document) DocumentResponse {
	lines := make([]LineResponse, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		lines = append(lines, LineResponse{
			ID:          l.ID,
			Description: l.Description,
			Amount:      l.Amount,
		})
	}
	return DocumentResponse{
		ID:             doc.ID,
		EntityID:       doc.EntityID,
		ClientID:       doc.ClientID,
		Kind:           string(doc.Kind),
		Code:           doc.Code,
		Lines:          lines,
		TaxStatus:      string(doc.TaxStatus),
		TaxRate:        doc.TaxRate,
		ReverseCharge:  doc.ReverseCharge,
		Subtotal:       doc.Subtotal,
		DiscountAmt:    doc.DiscountAmt,
		TaxAmt:         doc.TaxAmt,
		WithholdingAmt: doc.WithholdingAmt,
		TotalAmt:       doc.TotalAmt,
		CreatedAt:      doc.CreatedAt,
	}
}
