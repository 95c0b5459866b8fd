// Package partner holds the counterparties business records are raised
// against. For this core that is the client: the party an invoice bills, a
// job is done for, and withholding is assessed on.
package partner

import (
	"strings"
	"time"

	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Client is a billable counterparty scoped to one entity. Its reference code
// comes from the sequence allocator's short-code series and is immutable
// once issued; its tax status fixes the withholding tier applied to
// documents raised against it.
type Client struct {
	shared.EntityAggregateRoot
	RefCode     string            `gorm:"type:varchar(10);not null;index"`
	Name        string            `gorm:"type:varchar(200);not null"`
	CompanyName string            `gorm:"type:varchar(200)"`
	Email       string            `gorm:"type:varchar(200)"`
	TaxStatus   finance.TaxStatus `gorm:"type:varchar(20);not null"`
	IsActive    bool              `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client without a reference code; the code is
// assigned once by the creation flow after allocation.
func NewClient(entityID uuid.UUID, name, companyName string, status finance.TaxStatus) (*Client, error) {
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Client must belong to an entity")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	if !status.IsValid() {
		return nil, shared.ErrUnknownTaxStatus
	}

	return &Client{
		EntityAggregateRoot: shared.NewEntityAggregateRoot(entityID),
		Name:                strings.TrimSpace(name),
		CompanyName:         strings.TrimSpace(companyName),
		TaxStatus:           status,
		IsActive:            true,
	}, nil
}

// AssignRefCode sets the client's reference code exactly once
func (c *Client) AssignRefCode(code string) error {
	if c.RefCode != "" {
		return shared.NewDomainError("CODE_ALREADY_ASSIGNED", "Client reference code is immutable once issued")
	}
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Client reference code cannot be empty")
	}

	c.RefCode = code
	c.UpdatedAt = time.Now()

	return nil
}

// Rename changes the client's display name. The reference code derived from
// the original name is not regenerated.
func (c *Client) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}

	c.Name = strings.TrimSpace(name)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetTaxStatus updates the client's verification status. Documents created
// afterwards pick up the new withholding tier; existing documents keep the
// status they snapshotted.
func (c *Client) SetTaxStatus(status finance.TaxStatus) error {
	if !status.IsValid() {
		return shared.ErrUnknownTaxStatus
	}

	c.TaxStatus = status
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetEmail sets the client's contact email
func (c *Client) SetEmail(email string) error {
	if email != "" && len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	c.Email = strings.TrimSpace(email)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Deactivate marks the client inactive without deleting it
func (c *Client) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
