package persistence

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements tenancy.AccountRepository using GORM.
// Accounts are platform-level records and are never entity-scoped.
type GormAccountRepository struct {
	db  *gorm.DB
	bus shared.EventBus
}

// NewGormAccountRepository creates a new GORM-based account repository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// SetEventBus attaches a bus that receives the aggregate's domain events
// after successful writes
func (r *GormAccountRepository) SetEventBus(bus shared.EventBus) {
	r.bus = bus
}

// Create persists a new account
func (r *GormAccountRepository) Create(ctx context.Context, account *tenancy.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("ALREADY_EXISTS", "account code already in use")
		}
		return err
	}
	publishEvents(ctx, r.bus, account)
	return nil
}

// Update persists changes to an existing account
func (r *GormAccountRepository) Update(ctx context.Context, account *tenancy.Account) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		return err
	}
	publishEvents(ctx, r.bus, account)
	return nil
}

// FindByID retrieves an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Account, error) {
	var account tenancy.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "account not found")
		}
		return nil, err
	}
	return &account, nil
}

// FindByCode retrieves an account by its normalized code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*tenancy.Account, error) {
	var account tenancy.Account
	err := r.db.WithContext(ctx).First(&account, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "account not found")
		}
		return nil, err
	}
	return &account, nil
}

// FindAll retrieves every account, newest first
func (r *GormAccountRepository) FindAll(ctx context.Context) ([]*tenancy.Account, error) {
	var accounts []*tenancy.Account
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
