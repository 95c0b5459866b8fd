package persistence

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEntityRepository implements tenancy.EntityRepository using GORM.
// Operating entities are platform-level records; the entity scope applies
// to the business records owned by an entity, not to the entity rows
// themselves.
type GormEntityRepository struct {
	db  *gorm.DB
	bus shared.EventBus
}

// NewGormEntityRepository creates a new GORM-based entity repository
func NewGormEntityRepository(db *gorm.DB) *GormEntityRepository {
	return &GormEntityRepository{db: db}
}

// SetEventBus attaches a bus that receives the aggregate's domain events
// after successful writes
func (r *GormEntityRepository) SetEventBus(bus shared.EventBus) {
	r.bus = bus
}

// Create persists a new operating entity
func (r *GormEntityRepository) Create(ctx context.Context, entity *tenancy.Entity) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("ALREADY_EXISTS", "entity slug already in use within account")
		}
		return err
	}
	publishEvents(ctx, r.bus, entity)
	return nil
}

// Update persists changes to an existing entity
func (r *GormEntityRepository) Update(ctx context.Context, entity *tenancy.Entity) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return err
	}
	publishEvents(ctx, r.bus, entity)
	return nil
}

// FindByID retrieves an entity by its ID
func (r *GormEntityRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Entity, error) {
	var entity tenancy.Entity
	err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "entity not found")
		}
		return nil, err
	}
	return &entity, nil
}

// FindBySlug retrieves an entity by account and slug
func (r *GormEntityRepository) FindBySlug(ctx context.Context, accountID uuid.UUID, slug string) (*tenancy.Entity, error) {
	var entity tenancy.Entity
	err := r.db.WithContext(ctx).
		First(&entity, "account_id = ? AND slug = ?", accountID, slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "entity not found")
		}
		return nil, err
	}
	return &entity, nil
}

// FindByAccount retrieves all entities belonging to an account
func (r *GormEntityRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*tenancy.Entity, error) {
	var entities []*tenancy.Entity
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("slug ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// ListActiveIDs returns the IDs of every active entity in the system
func (r *GormEntityRepository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&tenancy.Entity{}).
		Where("status = ?", tenancy.EntityStatusActive).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListActiveIDsByAccount returns the IDs of every active entity in an account
func (r *GormEntityRepository) ListActiveIDsByAccount(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&tenancy.Entity{}).
		Where("account_id = ? AND status = ?", accountID, tenancy.EntityStatusActive).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ExistsBySlug checks whether a slug is already taken within an account
func (r *GormEntityRepository) ExistsBySlug(ctx context.Context, accountID uuid.UUID, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&tenancy.Entity{}).
		Where("account_id = ? AND slug = ?", accountID, slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
