package tenancy

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines persistence operations for accounts
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByCode(ctx context.Context, code string) (*Account, error)
	FindAll(ctx context.Context) ([]*Account, error)
}

// EntityRepository defines persistence operations for operating entities
type EntityRepository interface {
	Create(ctx context.Context, entity *Entity) error
	Update(ctx context.Context, entity *Entity) error
	FindByID(ctx context.Context, id uuid.UUID) (*Entity, error)
	FindBySlug(ctx context.Context, accountID uuid.UUID, slug string) (*Entity, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*Entity, error)
	// ListActiveIDs returns the IDs of every active entity in the system.
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	// ListActiveIDsByAccount returns the IDs of every active entity in an account.
	ListActiveIDsByAccount(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error)
	ExistsBySlug(ctx context.Context, accountID uuid.UUID, slug string) (bool, error)
}

// UserRepository defines persistence operations for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByHomeEntity(ctx context.Context, entityID uuid.UUID) ([]*User, error)
}
