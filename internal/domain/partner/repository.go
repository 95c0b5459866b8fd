package partner

import (
	"context"

	"github.com/google/uuid"
)

// ClientRepository defines persistence operations for clients
type ClientRepository interface {
	Create(ctx context.Context, client *Client) error
	// CreateBatch persists the given clients in a single transaction.
	// Either every row is written or none is.
	CreateBatch(ctx context.Context, clients []*Client) error
	Update(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByRefCode(ctx context.Context, entityID uuid.UUID, refCode string) (*Client, error)
	FindByEntity(ctx context.Context, entityID uuid.UUID) ([]*Client, error)
	// RefCodeExists is the collision probe used by the sequence allocator's
	// short-code series.
	RefCodeExists(ctx context.Context, entityID uuid.UUID, refCode string) (bool, error)
}
