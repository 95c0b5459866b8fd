// Package entityscope provides entity-scoped database access for GORM.
//
// Every business record carries an entity_id column, and cross-entity reads
// are a correctness bug rather than a policy choice. This package applies
// WHERE entity_id = ? automatically, either from an explicit ID or from the
// request context, so repositories cannot forget the filter.
//
// Usage:
//
//	db := entityscope.NewEntityDB(gormDB)
//	scoped := db.WithContext(ctx) // entity ID taken from context
//	scoped.Find(&docs)            // WHERE entity_id = 'xxx' is auto-added
package entityscope

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrEntityIDRequired is returned when an entity ID is required but not found
var ErrEntityIDRequired = errors.New("entity_id is required but not found in context")

// ErrInvalidEntityID is returned when the entity ID format is invalid
var ErrInvalidEntityID = errors.New("invalid entity_id format")

// Scope applies entity filtering to GORM queries
func Scope(entityID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("entity_id = ?", entityID)
	}
}

// ScopeString applies entity filtering using a string entity ID
func ScopeString(entityID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("entity_id = ?", entityID)
	}
}

// EntityDB wraps GORM DB with automatic entity scoping
type EntityDB struct {
	db       *gorm.DB
	required bool
}

// NewEntityDB creates a new EntityDB. The entity ID is required by default;
// operations without one fail instead of silently reading every entity.
func NewEntityDB(db *gorm.DB) *EntityDB {
	return &EntityDB{db: db, required: true}
}

// DB returns the underlying GORM DB without entity scoping.
// Use with caution as this bypasses entity isolation.
func (e *EntityDB) DB() *gorm.DB {
	return e.db
}

// WithContext returns a GORM DB scoped to the entity from context.
// The entity ID is placed in context by the access-resolution middleware.
//
// If no entity ID is found and the scope is required, the returned DB
// errors on any operation.
func (e *EntityDB) WithContext(ctx context.Context) *gorm.DB {
	entityID := logger.GetEntityID(ctx)

	if entityID == "" {
		db := e.db.WithContext(ctx)
		if e.required {
			_ = db.AddError(ErrEntityIDRequired)
		}
		return db
	}

	if _, err := uuid.Parse(entityID); err != nil {
		db := e.db.WithContext(ctx)
		_ = db.AddError(ErrInvalidEntityID)
		return db
	}

	return e.db.WithContext(ctx).Scopes(ScopeString(entityID))
}

// WithEntity returns a GORM DB scoped to a specific entity ID.
// Use this when the resolver has already produced the ID.
func (e *EntityDB) WithEntity(ctx context.Context, entityID uuid.UUID) *gorm.DB {
	if entityID == uuid.Nil {
		db := e.db.WithContext(ctx)
		if e.required {
			_ = db.AddError(ErrEntityIDRequired)
		}
		return db
	}
	return e.db.WithContext(ctx).Scopes(Scope(entityID))
}

// Transaction executes a function within a database transaction scoped to
// the entity from context.
func (e *EntityDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	entityID := logger.GetEntityID(ctx)

	if entityID == "" && e.required {
		return ErrEntityIDRequired
	}

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if entityID != "" {
			tx = tx.Scopes(ScopeString(entityID))
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB without any entity scoping.
// This should only be used for system-level operations or migrations.
func (e *EntityDB) Unscoped() *gorm.DB {
	return e.db
}
