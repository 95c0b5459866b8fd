package partner

import (
	"time"

	"github.com/fieldops/backend/internal/domain/partner"
	csvimport "github.com/fieldops/backend/internal/infrastructure/import"
	"github.com/google/uuid"
)

// CreateClientRequest represents a request to create a new client.
// RefCode is optional; when omitted a code is derived from the names.
type CreateClientRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	CompanyName string `json:"company_name" binding:"max=200"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	TaxStatus   string `json:"tax_status" binding:"required,oneof=unverified verified_net verified_gross"`
	RefCode     string `json:"ref_code" binding:"omitempty,len=3"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email     *string `json:"email" binding:"omitempty,email,max=200"`
	TaxStatus *string `json:"tax_status" binding:"omitempty,oneof=unverified verified_net verified_gross"`
}

// ImportClientsResponse summarizes a bulk client import. Errors and
// Clients are mutually exclusive: a file with any invalid row imports
// nothing.
type ImportClientsResponse struct {
	TotalRows int                  `json:"total_rows"`
	Imported  int                  `json:"imported"`
	Errors    []csvimport.RowError `json:"errors,omitempty"`
	Clients   []ClientResponse     `json:"clients,omitempty"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID          uuid.UUID `json:"id"`
	EntityID    uuid.UUID `json:"entity_id"`
	RefCode     string    `json:"ref_code"`
	Name        string    `json:"name"`
	CompanyName string    `json:"company_name"`
	Email       string    `json:"email"`
	TaxStatus   string    `json:"tax_status"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toClientResponse(client *partner.Client) ClientResponse {
	return ClientResponse{
		ID:          client.ID,
		EntityID:    client.EntityID,
		RefCode:     client.RefCode,
		Name:        client.Name,
		CompanyName: client.CompanyName,
		Email:       client.Email,
		TaxStatus:   string(client.TaxStatus),
		IsActive:    client.IsActive,
		CreatedAt:   client.CreatedAt,
	}
}
