package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Record
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseRecord
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseRecord: NewBaseRecord(),
		Version:    1,
	}
}

// EntityAggregateRoot extends BaseAggregateRoot for records scoped to a
// single operating entity. Every business record in the system embeds this;
// EntityID is the unit of tenant isolation.
type EntityAggregateRoot struct {
	BaseAggregateRoot
	EntityID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// NewEntityAggregateRoot creates a new entity-scoped aggregate root
func NewEntityAggregateRoot(entityID uuid.UUID) EntityAggregateRoot {
	return EntityAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		EntityID:          entityID,
	}
}

// NewEntityAggregateRootWithCreator creates a new entity-scoped aggregate root with creator info
func NewEntityAggregateRootWithCreator(entityID, createdBy uuid.UUID) EntityAggregateRoot {
	return EntityAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		EntityID:          entityID,
		CreatedBy:         &createdBy,
	}
}

// SetCreatedBy sets the creator user ID
func (e *EntityAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	e.CreatedBy = &userID
}
