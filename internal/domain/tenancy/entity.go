package tenancy

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntityStatus represents the status of an operating entity
type EntityStatus string

const (
	EntityStatusActive EntityStatus = "active"
	// EntityStatusDisabled keeps the entity's data but new sessions cannot
	// select it. Entities are never hard-deleted.
	EntityStatusDisabled EntityStatus = "disabled"
)

// DefaultTaxRate is the per-entity tax rate applied when none is configured.
var DefaultTaxRate = decimal.NewFromInt(20)

// EntitySettings holds per-entity configuration: the enabled-module set and
// financial defaults. Settings edits are administrator-initiated and use
// last-writer-wins semantics.
type EntitySettings struct {
	Modules        string          `json:"modules" gorm:"type:text"` // JSON array of enabled module keys
	DefaultTaxRate decimal.Decimal `json:"default_tax_rate" gorm:"type:decimal(5,2)"`
	Currency       string          `json:"currency" gorm:"type:varchar(3)"`
}

// DefaultEntitySettings returns the settings for a newly created entity:
// all modules enabled, 20% tax rate.
func DefaultEntitySettings() EntitySettings {
	keys := make([]string, 0, len(allModules))
	for _, m := range allModules {
		keys = append(keys, string(m))
	}
	raw, _ := json.Marshal(keys)
	return EntitySettings{
		Modules:        string(raw),
		DefaultTaxRate: DefaultTaxRate,
		Currency:       "GBP",
	}
}

// EnabledModules decodes the enabled-module set
func (s EntitySettings) EnabledModules() []ModuleKey {
	var keys []string
	if err := json.Unmarshal([]byte(s.Modules), &keys); err != nil {
		return nil
	}
	out := make([]ModuleKey, 0, len(keys))
	for _, k := range keys {
		if mk := ModuleKey(k); mk.IsValid() {
			out = append(out, mk)
		}
	}
	return out
}

// ModuleEnabled reports whether the given module is enabled
func (s EntitySettings) ModuleEnabled(key ModuleKey) bool {
	for _, m := range s.EnabledModules() {
		if m == key {
			return true
		}
	}
	return false
}

func (s *EntitySettings) setModules(keys []ModuleKey) {
	strs := make([]string, 0, len(keys))
	for _, k := range keys {
		strs = append(strs, string(k))
	}
	raw, _ := json.Marshal(strs)
	s.Modules = string(raw)
}

// Entity is a single operating company or branch: the unit to which all
// business records are scoped. It is the aggregate root for entity operations.
type Entity struct {
	shared.BaseAggregateRoot
	AccountID uuid.UUID      `gorm:"type:uuid;not null;index:idx_entities_account_slug,unique"`
	Name      string         `gorm:"type:varchar(200);not null"`
	Slug      string         `gorm:"type:varchar(100);not null;index:idx_entities_account_slug,unique"`
	Status    EntityStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	Settings  EntitySettings `gorm:"embedded;embeddedPrefix:settings_"`
}

// TableName returns the table name for GORM
func (Entity) TableName() string {
	return "entities"
}

// NewEntity creates a new operating entity under an account
func NewEntity(accountID uuid.UUID, name, slug string) (*Entity, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Entity must belong to an account")
	}
	if err := validateEntityName(name); err != nil {
		return nil, err
	}
	if err := validateEntitySlug(slug); err != nil {
		return nil, err
	}

	entity := &Entity{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountID:         accountID,
		Name:              strings.TrimSpace(name),
		Slug:              strings.ToLower(strings.TrimSpace(slug)),
		Status:            EntityStatusActive,
		Settings:          DefaultEntitySettings(),
	}

	entity.AddDomainEvent(NewEntityCreatedEvent(entity))

	return entity, nil
}

// Rename updates the entity's display name
func (e *Entity) Rename(name string) error {
	if err := validateEntityName(name); err != nil {
		return err
	}

	e.Name = strings.TrimSpace(name)
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// Disable soft-disables the entity. Its data remains but new sessions cannot
// select it, and the access resolver drops it from every principal's scope.
func (e *Entity) Disable() error {
	if e.Status == EntityStatusDisabled {
		return shared.NewDomainError("ALREADY_DISABLED", "Entity is already disabled")
	}

	e.Status = EntityStatusDisabled
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	e.AddDomainEvent(NewEntityStatusChangedEvent(e))

	return nil
}

// Activate re-activates a disabled entity
func (e *Entity) Activate() error {
	if e.Status == EntityStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Entity is already active")
	}

	e.Status = EntityStatusActive
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	e.AddDomainEvent(NewEntityStatusChangedEvent(e))

	return nil
}

// IsActive returns true if the entity is active
func (e *Entity) IsActive() bool {
	return e.Status == EntityStatusActive
}

// EnableModule enables a feature module for this entity
func (e *Entity) EnableModule(key ModuleKey) error {
	if !key.IsValid() {
		return shared.NewDomainError("INVALID_MODULE", "Unknown module: "+string(key))
	}
	if e.Settings.ModuleEnabled(key) {
		return shared.NewDomainError("MODULE_ALREADY_ENABLED", "Module is already enabled")
	}

	e.Settings.setModules(append(e.Settings.EnabledModules(), key))
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	e.AddDomainEvent(NewEntityModulesChangedEvent(e, key, true))

	return nil
}

// DisableModule disables a feature module for this entity. Even fully
// entitled roles are denied module-gated actions afterwards.
func (e *Entity) DisableModule(key ModuleKey) error {
	if !key.IsValid() {
		return shared.NewDomainError("INVALID_MODULE", "Unknown module: "+string(key))
	}
	if !e.Settings.ModuleEnabled(key) {
		return shared.NewDomainError("MODULE_ALREADY_DISABLED", "Module is already disabled")
	}

	remaining := make([]ModuleKey, 0)
	for _, m := range e.Settings.EnabledModules() {
		if m != key {
			remaining = append(remaining, m)
		}
	}
	e.Settings.setModules(remaining)
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	e.AddDomainEvent(NewEntityModulesChangedEvent(e, key, false))

	return nil
}

// SetDefaultTaxRate sets the entity's default tax rate percentage
func (e *Entity) SetDefaultTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	if rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot exceed 100")
	}

	e.Settings.DefaultTaxRate = rate
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// SetCurrency sets the entity's default currency code
func (e *Entity) SetCurrency(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}

	e.Settings.Currency = code
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// Validation functions

func validateEntityName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Entity name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Entity name cannot exceed 200 characters")
	}
	return nil
}

func validateEntitySlug(slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Entity slug cannot be empty")
	}
	if len(slug) > 100 {
		return shared.NewDomainError("INVALID_SLUG", "Entity slug cannot exceed 100 characters")
	}
	for _, r := range strings.ToLower(slug) {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return shared.NewDomainError("INVALID_SLUG", "Entity slug can only contain letters, numbers, and hyphens")
		}
	}
	return nil
}
