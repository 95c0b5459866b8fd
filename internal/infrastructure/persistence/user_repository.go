package persistence

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements tenancy.UserRepository using GORM
type GormUserRepository struct {
	db  *gorm.DB
	bus shared.EventBus
}

// NewGormUserRepository creates a new GORM-based user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// SetEventBus attaches a bus that receives the aggregate's domain events
// after successful writes
func (r *GormUserRepository) SetEventBus(bus shared.EventBus) {
	r.bus = bus
}

// Create persists a new user
func (r *GormUserRepository) Create(ctx context.Context, user *tenancy.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("ALREADY_EXISTS", "username already in use")
		}
		return err
	}
	publishEvents(ctx, r.bus, user)
	return nil
}

// Update persists changes to an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *tenancy.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return err
	}
	publishEvents(ctx, r.bus, user)
	return nil
}

// FindByID retrieves a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.User, error) {
	var user tenancy.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "user not found")
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername retrieves a user by their lowercase username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*tenancy.User, error) {
	var user tenancy.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "user not found")
		}
		return nil, err
	}
	return &user, nil
}

// FindByHomeEntity retrieves all users whose home entity matches
func (r *GormUserRepository) FindByHomeEntity(ctx context.Context, entityID uuid.UUID) ([]*tenancy.User, error) {
	var users []*tenancy.User
	err := r.db.WithContext(ctx).
		Where("home_entity_id = ?", entityID).
		Order("username ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
