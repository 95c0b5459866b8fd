package tenancy

import (
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeAccount = "Account"
	AggregateTypeEntity  = "Entity"
	AggregateTypeUser    = "User"
)

// Event type constants
const (
	EventTypeAccountCreated       = "AccountCreated"
	EventTypeEntityCreated        = "EntityCreated"
	EventTypeEntityStatusChanged  = "EntityStatusChanged"
	EventTypeEntityModulesChanged = "EntityModulesChanged"
	EventTypeUserCreated          = "UserCreated"
)

// AccountCreatedEvent is published when a new account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(account *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, AggregateTypeAccount, account.ID),
		Code:            account.Code,
		Name:            account.Name,
	}
}

// EntityCreatedEvent is published when a new entity is created
type EntityCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
}

// NewEntityCreatedEvent creates a new EntityCreatedEvent
func NewEntityCreatedEvent(entity *Entity) *EntityCreatedEvent {
	return &EntityCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityCreated, AggregateTypeEntity, entity.ID),
		AccountID:       entity.AccountID,
		Name:            entity.Name,
		Slug:            entity.Slug,
	}
}

// EntityStatusChangedEvent is published when an entity is disabled or re-activated.
// Consumers use it to drop stale sessions and invalidate module-flag caches.
type EntityStatusChangedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID    `json:"account_id"`
	Status    EntityStatus `json:"status"`
}

// NewEntityStatusChangedEvent creates a new EntityStatusChangedEvent
func NewEntityStatusChangedEvent(entity *Entity) *EntityStatusChangedEvent {
	return &EntityStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityStatusChanged, AggregateTypeEntity, entity.ID),
		AccountID:       entity.AccountID,
		Status:          entity.Status,
	}
}

// EntityModulesChangedEvent is published when a module is enabled or disabled
type EntityModulesChangedEvent struct {
	shared.BaseDomainEvent
	Module  ModuleKey `json:"module"`
	Enabled bool      `json:"enabled"`
}

// NewEntityModulesChangedEvent creates a new EntityModulesChangedEvent
func NewEntityModulesChangedEvent(entity *Entity, module ModuleKey, enabled bool) *EntityModulesChangedEvent {
	return &EntityModulesChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityModulesChanged, AggregateTypeEntity, entity.ID),
		Module:          module,
		Enabled:         enabled,
	}
}

// UserCreatedEvent is published when a new user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username     string     `json:"username"`
	Role         Role       `json:"role"`
	HomeEntityID *uuid.UUID `json:"home_entity_id,omitempty"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID),
		Username:        user.Username,
		Role:            user.Role,
		HomeEntityID:    user.HomeEntityID,
	}
}
