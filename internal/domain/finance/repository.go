package finance

import (
	"context"

	"github.com/google/uuid"
)

// DocumentRepository defines persistence operations for monetary documents
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	Update(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	FindByCode(ctx context.Context, entityID uuid.UUID, kind DocumentKind, code string) (*Document, error)
	FindByEntity(ctx context.Context, entityID uuid.UUID, kind DocumentKind) ([]*Document, error)
	ExistsByCode(ctx context.Context, entityID uuid.UUID, kind DocumentKind, code string) (bool, error)
}
