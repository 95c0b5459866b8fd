package shared

import (
	"time"

	"github.com/google/uuid"
)

// Record is the base interface for all persisted domain objects
type Record interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseRecord provides common fields for all persisted domain objects
type BaseRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the record ID
func (r *BaseRecord) GetID() uuid.UUID {
	return r.ID
}

// GetCreatedAt returns the creation timestamp
func (r *BaseRecord) GetCreatedAt() time.Time {
	return r.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (r *BaseRecord) GetUpdatedAt() time.Time {
	return r.UpdatedAt
}

// NewBaseRecord creates a new base record with a generated ID
func NewBaseRecord() BaseRecord {
	now := time.Now()
	return BaseRecord{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
