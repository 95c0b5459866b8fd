package access

import (
	"context"
	"testing"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirectory is an in-memory EntityDirectory for resolver tests
type fakeDirectory struct {
	entities map[uuid.UUID]*tenancy.Entity
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{entities: make(map[uuid.UUID]*tenancy.Entity)}
}

func (d *fakeDirectory) add(accountID uuid.UUID, name string) *tenancy.Entity {
	e, err := tenancy.NewEntity(accountID, name, name)
	if err != nil {
		panic(err)
	}
	d.entities[e.ID] = e
	return e
}

func (d *fakeDirectory) FindByID(_ context.Context, id uuid.UUID) (*tenancy.Entity, error) {
	if e, ok := d.entities[id]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (d *fakeDirectory) ListActiveIDs(_ context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	for id, e := range d.entities {
		if e.IsActive() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (d *fakeDirectory) ListActiveIDsByAccount(_ context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	for id, e := range d.entities {
		if e.IsActive() && e.AccountID == accountID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func identityWithHome(role tenancy.Role, home uuid.UUID) Identity {
	return Identity{UserID: uuid.New(), Role: role, HomeEntityID: &home}
}

func TestResolverAccessibleEntities(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()

	accountA := uuid.New()
	accountB := uuid.New()
	entA1 := dir.add(accountA, "alpha-one")
	entA2 := dir.add(accountA, "alpha-two")
	entB1 := dir.add(accountB, "beta-one")

	resolver := NewResolver(dir)

	t.Run("platform admin sees every active entity", func(t *testing.T) {
		ids, err := resolver.AccessibleEntities(ctx, Identity{UserID: uuid.New(), Role: tenancy.RolePlatformAdmin})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{entA1.ID, entA2.ID, entB1.ID}, ids)
	})

	t.Run("platform admin scope grows with entity creation", func(t *testing.T) {
		extra := dir.add(accountB, "beta-two")
		defer delete(dir.entities, extra.ID)

		ids, err := resolver.AccessibleEntities(ctx, Identity{UserID: uuid.New(), Role: tenancy.RolePlatformAdmin})
		require.NoError(t, err)
		assert.Contains(t, ids, extra.ID)
	})

	t.Run("account admin sees all entities of its account only", func(t *testing.T) {
		ids, err := resolver.AccessibleEntities(ctx, identityWithHome(tenancy.RoleAccountAdmin, entA1.ID))
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{entA1.ID, entA2.ID}, ids)
	})

	t.Run("entity admin resolves to the home entity alone", func(t *testing.T) {
		ids, err := resolver.AccessibleEntities(ctx, identityWithHome(tenancy.RoleEntityAdmin, entB1.ID))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{entB1.ID}, ids)
	})

	t.Run("entity user resolves to a set of size exactly one", func(t *testing.T) {
		ids, err := resolver.AccessibleEntities(ctx, identityWithHome(tenancy.RoleEntityUser, entA2.ID))
		require.NoError(t, err)
		assert.Len(t, ids, 1)
		assert.Equal(t, entA2.ID, ids[0])
	})

	t.Run("no home entity resolves to the empty set without error", func(t *testing.T) {
		ids, err := resolver.AccessibleEntities(ctx, Identity{UserID: uuid.New(), Role: tenancy.RoleEntityUser})
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("unknown home entity resolves to the empty set without error", func(t *testing.T) {
		ids, err := resolver.AccessibleEntities(ctx, identityWithHome(tenancy.RoleEntityAdmin, uuid.New()))
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("disabled home entity drops a stale session's access", func(t *testing.T) {
		disabled := dir.add(accountA, "alpha-gone")
		require.NoError(t, disabled.Disable())
		defer delete(dir.entities, disabled.ID)

		ids, err := resolver.AccessibleEntities(ctx, identityWithHome(tenancy.RoleEntityAdmin, disabled.ID))
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("account admin does not see a disabled sibling entity", func(t *testing.T) {
		disabled := dir.add(accountA, "alpha-dark")
		require.NoError(t, disabled.Disable())
		defer delete(dir.entities, disabled.ID)

		ids, err := resolver.AccessibleEntities(ctx, identityWithHome(tenancy.RoleAccountAdmin, entA1.ID))
		require.NoError(t, err)
		assert.NotContains(t, ids, disabled.ID)
	})
}

func TestResolverCanAccessEntity(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()

	accountA := uuid.New()
	accountB := uuid.New()
	entA := dir.add(accountA, "alpha")
	entB := dir.add(accountB, "beta")

	resolver := NewResolver(dir)

	t.Run("entity admin for A cannot reach a record owned by B", func(t *testing.T) {
		ok, err := resolver.CanAccessEntity(ctx, identityWithHome(tenancy.RoleEntityAdmin, entA.ID), entB.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("home entity is accessible", func(t *testing.T) {
		ok, err := resolver.CanAccessEntity(ctx, identityWithHome(tenancy.RoleEntityAdmin, entA.ID), entA.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("platform admin reaches both accounts", func(t *testing.T) {
		id := Identity{UserID: uuid.New(), Role: tenancy.RolePlatformAdmin}
		for _, target := range []uuid.UUID{entA.ID, entB.ID} {
			ok, err := resolver.CanAccessEntity(ctx, id, target)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("nil entity is never accessible", func(t *testing.T) {
		ok, err := resolver.CanAccessEntity(ctx, identityWithHome(tenancy.RolePlatformAdmin, entA.ID), uuid.Nil)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
