package tenancy

import (
	"time"

	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents a request to create a new account
type CreateAccountRequest struct {
	Code string `json:"code" binding:"required,min=2,max=50"`
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResponse(account *tenancy.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Code:      account.Code,
		Name:      account.Name,
		Status:    string(account.Status),
		CreatedAt: account.CreatedAt,
	}
}

// CreateEntityRequest represents a request to create an operating entity
type CreateEntityRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
	Name      string    `json:"name" binding:"required,min=1,max=200"`
	Slug      string    `json:"slug" binding:"required,min=2,max=100"`
}

// UpdateEntitySettingsRequest applies partial settings changes to an entity
type UpdateEntitySettingsRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=200"`
	DefaultTaxRate *decimal.Decimal `json:"default_tax_rate"`
	Currency       *string          `json:"currency" binding:"omitempty,len=3"`
}

// EntityResponse represents an operating entity in API responses
type EntityResponse struct {
	ID             uuid.UUID       `json:"id"`
	AccountID      uuid.UUID       `json:"account_id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Status         string          `json:"status"`
	EnabledModules []string        `json:"enabled_modules"`
	DefaultTaxRate decimal.Decimal `json:"default_tax_rate"`
	Currency       string          `json:"currency"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toEntityResponse(entity *tenancy.Entity) EntityResponse {
	keys := entity.Settings.EnabledModules()
	modules := make([]string, 0, len(keys))
	for _, key := range keys {
		modules = append(modules, string(key))
	}
	return EntityResponse{
		ID:             entity.ID,
		AccountID:      entity.AccountID,
		Name:           entity.Name,
		Slug:           entity.Slug,
		Status:         string(entity.Status),
		EnabledModules: modules,
		DefaultTaxRate: entity.Settings.DefaultTaxRate,
		Currency:       entity.Settings.Currency,
		CreatedAt:      entity.CreatedAt,
	}
}
