package persistence

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/persistence/entityscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements finance.DocumentRepository using GORM.
// Documents and their lines are written together; lines are replaced on
// update so the stored set always mirrors the aggregate. Entity-scoped
// reads go through entityscope.EntityDB.
type GormDocumentRepository struct {
	db *entityscope.EntityDB
}

// NewGormDocumentRepository creates a new GORM-based document repository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: entityscope.NewEntityDB(db)}
}

// Create persists a new document with its lines
func (r *GormDocumentRepository) Create(ctx context.Context, doc *finance.Document) error {
	if err := r.db.DB().WithContext(ctx).Create(doc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("ALREADY_EXISTS", "document code already in use")
		}
		return err
	}
	return nil
}

// Update persists changes to an existing document, replacing its lines
func (r *GormDocumentRepository) Update(ctx context.Context, doc *finance.Document) error {
	return r.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", doc.ID).Delete(&finance.DocumentLine{}).Error; err != nil {
			return err
		}
		return tx.Save(doc).Error
	})
}

// FindByID retrieves a document with its lines by ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Document, error) {
	var doc finance.Document
	err := r.db.DB().WithContext(ctx).
		Preload("Lines").
		First(&doc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "document not found")
		}
		return nil, err
	}
	return &doc, nil
}

// FindByCode retrieves a document by its issued code within an entity
func (r *GormDocumentRepository) FindByCode(ctx context.Context, entityID uuid.UUID, kind finance.DocumentKind, code string) (*finance.Document, error) {
	var doc finance.Document
	err := r.db.WithEntity(ctx, entityID).
		Preload("Lines").
		First(&doc, "kind = ? AND code = ?", kind, code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "document not found")
		}
		return nil, err
	}
	return &doc, nil
}

// FindByEntity retrieves all documents of a kind within an entity,
// newest first
func (r *GormDocumentRepository) FindByEntity(ctx context.Context, entityID uuid.UUID, kind finance.DocumentKind) ([]*finance.Document, error) {
	var docs []*finance.Document
	err := r.db.WithEntity(ctx, entityID).
		Preload("Lines").
		Where("kind = ?", kind).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// ExistsByCode checks whether a code is already issued for a kind within
// an entity
func (r *GormDocumentRepository) ExistsByCode(ctx context.Context, entityID uuid.UUID, kind finance.DocumentKind, code string) (bool, error) {
	var count int64
	err := r.db.WithEntity(ctx, entityID).
		Model(&finance.Document{}).
		Where("kind = ? AND code = ?", kind, code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
