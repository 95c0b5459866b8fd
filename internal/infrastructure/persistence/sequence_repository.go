package persistence

import (
	"context"
	"fmt"

	"github.com/fieldops/backend/internal/domain/partner"
	"github.com/fieldops/backend/internal/domain/sequence"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/persistence/entityscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSequenceStore implements sequence.Store on PostgreSQL. The increment
// is a single upsert statement, so concurrent callers on the same series
// serialize on the row lock and each sees a distinct value. No value is
// ever handed out twice, even across process restarts.
type GormSequenceStore struct {
	db *gorm.DB
}

// NewGormSequenceStore creates a new PostgreSQL-backed sequence store
func NewGormSequenceStore(db *gorm.DB) *GormSequenceStore {
	return &GormSequenceStore{db: db}
}

// Increment atomically advances the counter for (entityID, seriesKey) and
// returns the new value, creating the row at 1 on first use.
func (s *GormSequenceStore) Increment(ctx context.Context, entityID uuid.UUID, seriesKey string) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO sequences (entity_id, series_key, last_value, created_at, updated_at)
		VALUES (?, ?, 1, NOW(), NOW())
		ON CONFLICT (entity_id, series_key)
		DO UPDATE SET last_value = sequences.last_value + 1, updated_at = NOW()
		RETURNING last_value`,
		entityID, seriesKey,
	).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w: %w", seriesKey, shared.ErrTransientStorage, err)
	}
	return value, nil
}

// GormCodeProbe implements sequence.CodeProbe by checking the table that
// owns each short-code series. Only the client reference series exists
// today; unknown series are rejected rather than silently reported free.
type GormCodeProbe struct {
	db *gorm.DB
}

// NewGormCodeProbe creates a new code probe over the business tables
func NewGormCodeProbe(db *gorm.DB) *GormCodeProbe {
	return &GormCodeProbe{db: db}
}

// CodeExists reports whether a candidate code is already taken within an
// entity's series.
func (p *GormCodeProbe) CodeExists(ctx context.Context, entityID uuid.UUID, seriesKey, code string) (bool, error) {
	switch seriesKey {
	case sequence.SeriesClientRef:
		var count int64
		err := p.db.WithContext(ctx).
			Model(&partner.Client{}).
			Scopes(entityscope.Scope(entityID)).
			Where("ref_code = ?", code).
			Count(&count).Error
		if err != nil {
			return false, err
		}
		return count > 0, nil
	default:
		return false, fmt.Errorf("no code probe for series %q", seriesKey)
	}
}
