package cache

import (
	"context"
	"testing"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEntityRepo serves FindByID from a map and counts loads
type fakeEntityRepo struct {
	tenancy.EntityRepository
	entities map[uuid.UUID]*tenancy.Entity
	loads    int
}

func (f *fakeEntityRepo) FindByID(_ context.Context, id uuid.UUID) (*tenancy.Entity, error) {
	f.loads++
	entity, ok := f.entities[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return entity, nil
}

func newFlagSourceFixture(t *testing.T) (*CachedModuleFlagSource, *fakeEntityRepo, *tenancy.Entity) {
	entity, err := tenancy.NewEntity(uuid.New(), "London Branch", "london")
	require.NoError(t, err)

	repo := &fakeEntityRepo{entities: map[uuid.UUID]*tenancy.Entity{entity.ID: entity}}
	c := NewInMemoryModuleFlagCache(time.Minute)
	t.Cleanup(func() { c.Close() })

	return NewCachedModuleFlagSource(c, repo, time.Minute, nil), repo, entity
}

func TestCachedModuleFlagSource(t *testing.T) {
	ctx := context.Background()

	t.Run("loads from the store on a cold cache", func(t *testing.T) {
		source, repo, entity := newFlagSourceFixture(t)

		enabled, err := source.ModuleEnabled(ctx, entity.ID, tenancy.ModulePayroll)
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.Equal(t, 1, repo.loads)
	})

	t.Run("serves repeat reads from cache", func(t *testing.T) {
		source, repo, entity := newFlagSourceFixture(t)

		for i := 0; i < 5; i++ {
			_, err := source.ModuleEnabled(ctx, entity.ID, tenancy.ModuleClients)
			require.NoError(t, err)
		}
		assert.Equal(t, 1, repo.loads)
	})

	t.Run("disabled module answers false", func(t *testing.T) {
		source, _, entity := newFlagSourceFixture(t)
		require.NoError(t, entity.DisableModule(tenancy.ModulePayroll))

		enabled, err := source.ModuleEnabled(ctx, entity.ID, tenancy.ModulePayroll)
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("invalidate forces a reload after a toggle", func(t *testing.T) {
		source, repo, entity := newFlagSourceFixture(t)

		enabled, err := source.ModuleEnabled(ctx, entity.ID, tenancy.ModulePayroll)
		require.NoError(t, err)
		assert.True(t, enabled)

		require.NoError(t, entity.DisableModule(tenancy.ModulePayroll))
		require.NoError(t, source.Invalidate(ctx, entity.ID))

		enabled, err = source.ModuleEnabled(ctx, entity.ID, tenancy.ModulePayroll)
		require.NoError(t, err)
		assert.False(t, enabled)
		assert.Equal(t, 2, repo.loads)
	})

	t.Run("unknown entity surfaces the store error", func(t *testing.T) {
		source, _, _ := newFlagSourceFixture(t)

		_, err := source.ModuleEnabled(ctx, uuid.New(), tenancy.ModuleClients)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
