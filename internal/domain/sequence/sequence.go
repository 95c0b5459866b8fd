// Package sequence implements collision-safe generation of the human-facing
// numbers and short codes attached to business records: invoice numbers, job
// numbers, and three-letter client reference codes.
//
// Counters live in storage, never in process memory: a counter cached in a
// variable would hand out duplicates the moment a second instance starts.
// The Store contract below pushes the read-modify-write down to an atomic
// storage primitive.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Series keys for the numbering streams the system uses. A series is scoped
// to one entity; the same key on two entities is two independent counters.
const (
	SeriesInvoice   = "invoice"
	SeriesJob       = "job"
	SeriesTimesheet = "timesheet"
	SeriesClientRef = "client_ref"
)

// Sequence is the durable counter backing one (entity, series) numbering
// stream. Rows are created lazily on first allocation and never deleted
// while referencing records exist. LastValue only ever increases; issued
// values are never reused even when the enclosing document creation rolls
// back, so gaps are normal and duplicates are impossible.
type Sequence struct {
	EntityID  uuid.UUID `gorm:"type:uuid;not null;primaryKey"`
	SeriesKey string    `gorm:"type:varchar(100);not null;primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Sequence) TableName() string {
	return "sequences"
}

// Store is the storage contract for counters. Increment must be atomic with
// respect to concurrent callers on the same (entityID, seriesKey): two
// callers must never observe the same pre-increment value. Implementations
// use a transactional upsert-increment or an optimistic retry loop; a plain
// read-then-write is not a valid implementation.
//
// A failed Increment must leave no visible partial state, so callers may
// retry on shared.ErrTransientStorage.
type Store interface {
	Increment(ctx context.Context, entityID uuid.UUID, seriesKey string) (int64, error)
}

// CodeProbe checks whether a candidate short code is already taken within
// an entity's series.
type CodeProbe interface {
	CodeExists(ctx context.Context, entityID uuid.UUID, seriesKey, code string) (bool, error)
}

// FormatNumber renders an issued counter value as a document number,
// e.g. FormatNumber("INV", 42) == "INV-00042".
func FormatNumber(prefix string, value int64) string {
	return fmt.Sprintf("%s-%05d", prefix, value)
}
