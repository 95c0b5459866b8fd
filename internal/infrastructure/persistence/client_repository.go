package persistence

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/partner"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/persistence/entityscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements partner.ClientRepository using GORM.
// Entity-scoped reads go through entityscope.EntityDB so the entity_id
// filter cannot be forgotten; a client is never visible outside the
// entity that owns it.
type GormClientRepository struct {
	db *entityscope.EntityDB
}

// NewGormClientRepository creates a new GORM-based client repository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: entityscope.NewEntityDB(db)}
}

// Create persists a new client
func (r *GormClientRepository) Create(ctx context.Context, client *partner.Client) error {
	return r.db.DB().WithContext(ctx).Create(client).Error
}

// CreateBatch persists clients in one transaction, all rows or none
func (r *GormClientRepository) CreateBatch(ctx context.Context, clients []*partner.Client) error {
	if len(clients) == 0 {
		return nil
	}
	return r.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, client := range clients {
			if err := tx.Create(client).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update persists changes to an existing client
func (r *GormClientRepository) Update(ctx context.Context, client *partner.Client) error {
	return r.db.DB().WithContext(ctx).Save(client).Error
}

// FindByID retrieves a client by ID. Not entity-scoped; callers check the
// owning entity against the resolved scope after loading.
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var client partner.Client
	err := r.db.DB().WithContext(ctx).First(&client, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "client not found")
		}
		return nil, err
	}
	return &client, nil
}

// FindByRefCode retrieves a client by its reference code within an entity
func (r *GormClientRepository) FindByRefCode(ctx context.Context, entityID uuid.UUID, refCode string) (*partner.Client, error) {
	var client partner.Client
	err := r.db.WithEntity(ctx, entityID).First(&client, "ref_code = ?", refCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "client not found")
		}
		return nil, err
	}
	return &client, nil
}

// FindByEntity retrieves all clients belonging to an entity
func (r *GormClientRepository) FindByEntity(ctx context.Context, entityID uuid.UUID) ([]*partner.Client, error) {
	var clients []*partner.Client
	err := r.db.WithEntity(ctx, entityID).
		Order("name ASC").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

// RefCodeExists checks whether a reference code is already taken within an
// entity. The sequence allocator calls this while walking candidate codes.
func (r *GormClientRepository) RefCodeExists(ctx context.Context, entityID uuid.UUID, refCode string) (bool, error) {
	var count int64
	err := r.db.WithEntity(ctx, entityID).
		Model(&partner.Client{}).
		Where("ref_code = ?", refCode).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
