package persistence

import (
	"context"
	"testing"

	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDocumentTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&finance.Document{}, &finance.DocumentLine{}))
	return db
}

func newTestInvoice(t *testing.T, entityID uuid.UUID, code string) *finance.Document {
	doc, err := finance.NewDocument(
		entityID,
		uuid.New(),
		finance.DocumentKindInvoice,
		finance.TaxStatusVerifiedGross,
		decimal.NewFromInt(20),
		false,
		finance.NoDiscount(),
	)
	require.NoError(t, err)
	require.NoError(t, doc.AddLine("Labour", decimal.NewFromInt(500)))
	require.NoError(t, doc.AddLine("Materials", decimal.NewFromInt(250)))
	require.NoError(t, doc.AssignCode(code))
	return doc
}

func TestGormDocumentRepository_CreateAndFind(t *testing.T) {
	db := newDocumentTestDB(t)
	repo := NewGormDocumentRepository(db)
	entityID := uuid.New()

	t.Run("round trips a document with lines", func(t *testing.T) {
		doc := newTestInvoice(t, entityID, "INV-00001")
		require.NoError(t, repo.Create(context.Background(), doc))

		found, err := repo.FindByID(context.Background(), doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-00001", found.Code)
		require.Len(t, found.Lines, 2)
		assert.True(t, found.Subtotal.Equal(decimal.NewFromInt(750)))
		assert.True(t, found.TaxAmt.Equal(decimal.NewFromInt(150)))
		assert.True(t, found.TotalAmt.Equal(decimal.NewFromInt(900)))
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormDocumentRepository_FindByCode(t *testing.T) {
	db := newDocumentTestDB(t)
	repo := NewGormDocumentRepository(db)
	entityA := uuid.New()
	entityB := uuid.New()

	require.NoError(t, repo.Create(context.Background(), newTestInvoice(t, entityA, "INV-00001")))

	t.Run("finds document within its entity", func(t *testing.T) {
		found, err := repo.FindByCode(context.Background(), entityA, finance.DocumentKindInvoice, "INV-00001")
		require.NoError(t, err)
		assert.Equal(t, "INV-00001", found.Code)
		assert.Len(t, found.Lines, 2)
	})

	t.Run("same code in another entity is not found", func(t *testing.T) {
		_, err := repo.FindByCode(context.Background(), entityB, finance.DocumentKindInvoice, "INV-00001")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormDocumentRepository_Update(t *testing.T) {
	db := newDocumentTestDB(t)
	repo := NewGormDocumentRepository(db)
	entityID := uuid.New()

	doc := newTestInvoice(t, entityID, "INV-00001")
	require.NoError(t, repo.Create(context.Background(), doc))

	t.Run("replaces lines and stores recomputed amounts", func(t *testing.T) {
		require.Len(t, doc.Lines, 2)
		require.NoError(t, doc.RemoveLine(doc.Lines[0].ID))
		require.NoError(t, doc.AddLine("Call-out fee", decimal.NewFromInt(80)))
		require.NoError(t, repo.Update(context.Background(), doc))

		found, err := repo.FindByID(context.Background(), doc.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 2)
		assert.True(t, found.Subtotal.Equal(decimal.NewFromInt(330)))
		assert.Equal(t, "INV-00001", found.Code, "issued code survives edits")
	})
}

func TestGormDocumentRepository_FindByEntity(t *testing.T) {
	db := newDocumentTestDB(t)
	repo := NewGormDocumentRepository(db)
	entityA := uuid.New()
	entityB := uuid.New()

	require.NoError(t, repo.Create(context.Background(), newTestInvoice(t, entityA, "INV-00001")))
	require.NoError(t, repo.Create(context.Background(), newTestInvoice(t, entityA, "INV-00002")))
	require.NoError(t, repo.Create(context.Background(), newTestInvoice(t, entityB, "INV-00001")))

	docs, err := repo.FindByEntity(context.Background(), entityA, finance.DocumentKindInvoice)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestGormDocumentRepository_ExistsByCode(t *testing.T) {
	db := newDocumentTestDB(t)
	repo := NewGormDocumentRepository(db)
	entityA := uuid.New()
	entityB := uuid.New()

	require.NoError(t, repo.Create(context.Background(), newTestInvoice(t, entityA, "INV-00001")))

	t.Run("reports issued code", func(t *testing.T) {
		exists, err := repo.ExistsByCode(context.Background(), entityA, finance.DocumentKindInvoice, "INV-00001")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("code is free in another entity", func(t *testing.T) {
		exists, err := repo.ExistsByCode(context.Background(), entityB, finance.DocumentKindInvoice, "INV-00001")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("code is free for another kind", func(t *testing.T) {
		exists, err := repo.ExistsByCode(context.Background(), entityA, finance.DocumentKindJob, "INV-00001")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
