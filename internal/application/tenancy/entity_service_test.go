package tenancy

import (
	"context"
	"testing"

	"github.com/fieldops/backend/internal/domain/access"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*tenancy.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*tenancy.Account)}
}

func (f *fakeAccountRepo) Create(_ context.Context, a *tenancy.Account) error {
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccountRepo) Update(_ context.Context, a *tenancy.Account) error {
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*tenancy.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccountRepo) FindByCode(_ context.Context, code string) (*tenancy.Account, error) {
	for _, a := range f.accounts {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeAccountRepo) FindAll(_ context.Context) ([]*tenancy.Account, error) {
	var out []*tenancy.Account
	for _, a := range f.accounts {
		out = append(out, a)
	}
	return out, nil
}

type fakeEntityRepo struct {
	entities map[uuid.UUID]*tenancy.Entity
}

func newFakeEntityRepo() *fakeEntityRepo {
	return &fakeEntityRepo{entities: make(map[uuid.UUID]*tenancy.Entity)}
}

func (f *fakeEntityRepo) Create(_ context.Context, e *tenancy.Entity) error {
	f.entities[e.ID] = e
	return nil
}

func (f *fakeEntityRepo) Update(_ context.Context, e *tenancy.Entity) error {
	f.entities[e.ID] = e
	return nil
}

func (f *fakeEntityRepo) FindByID(_ context.Context, id uuid.UUID) (*tenancy.Entity, error) {
	e, ok := f.entities[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (f *fakeEntityRepo) FindBySlug(_ context.Context, accountID uuid.UUID, slug string) (*tenancy.Entity, error) {
	for _, e := range f.entities {
		if e.AccountID == accountID && e.Slug == slug {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeEntityRepo) FindByAccount(_ context.Context, accountID uuid.UUID) ([]*tenancy.Entity, error) {
	var out []*tenancy.Entity
	for _, e := range f.entities {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntityRepo) ListActiveIDs(_ context.Context) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, e := range f.entities {
		if e.IsActive() {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeEntityRepo) ListActiveIDsByAccount(_ context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, e := range f.entities {
		if e.AccountID == accountID && e.IsActive() {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeEntityRepo) ExistsBySlug(ctx context.Context, accountID uuid.UUID, slug string) (bool, error) {
	_, err := f.FindBySlug(ctx, accountID, slug)
	return err == nil, nil
}

// recordingInvalidator records which entities had their flags dropped
type recordingInvalidator struct {
	invalidated []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, entityID uuid.UUID) error {
	r.invalidated = append(r.invalidated, entityID)
	return nil
}

func newEntityFixture(t *testing.T) (*EntityService, *fakeEntityRepo, *fakeAccountRepo, *recordingInvalidator, uuid.UUID) {
	t.Helper()
	accounts := newFakeAccountRepo()
	account, err := tenancy.NewAccount("acme-group", "Acme Group")
	require.NoError(t, err)
	require.NoError(t, accounts.Create(context.Background(), account))

	entities := newFakeEntityRepo()
	invalidator := &recordingInvalidator{}
	resolver := access.NewResolver(entities)
	service := NewEntityService(entities, accounts, resolver, invalidator, zap.NewNop())
	return service, entities, accounts, invalidator, account.ID
}

// platformAdmin is broad enough for every fixture operation
var platformAdmin = access.Identity{UserID: uuid.New(), Role: tenancy.RolePlatformAdmin}

func TestEntityService_Create(t *testing.T) {
	t.Run("creates entity with default settings", func(t *testing.T) {
		service, _, _, _, accountID := newEntityFixture(t)

		resp, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{
			AccountID: accountID,
			Name:      "London Branch",
			Slug:      "London",
		})

		require.NoError(t, err)
		assert.Equal(t, "london", resp.Slug)
		assert.Len(t, resp.EnabledModules, len(tenancy.Modules()), "all modules on by default")
		assert.True(t, resp.DefaultTaxRate.Equal(decimal.NewFromInt(20)))
	})

	t.Run("rejects duplicate slug within account", func(t *testing.T) {
		service, _, _, _, accountID := newEntityFixture(t)

		_, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "A", Slug: "london"})
		require.NoError(t, err)

		_, err = service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "B", Slug: "london"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("rejects deactivated account", func(t *testing.T) {
		service, _, accounts, _, accountID := newEntityFixture(t)
		account, err := accounts.FindByID(context.Background(), accountID)
		require.NoError(t, err)
		require.NoError(t, account.Deactivate())

		_, err = service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "A", Slug: "london"})
		assert.Error(t, err)
	})
}

func TestEntityService_SetModule(t *testing.T) {
	t.Run("toggling a module invalidates the flag cache", func(t *testing.T) {
		service, _, _, invalidator, accountID := newEntityFixture(t)
		created, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "A", Slug: "london"})
		require.NoError(t, err)

		resp, err := service.SetModule(context.Background(), platformAdmin, created.ID, tenancy.ModulePayroll, false)

		require.NoError(t, err)
		assert.NotContains(t, resp.EnabledModules, "payroll")
		assert.Equal(t, []uuid.UUID{created.ID}, invalidator.invalidated)
	})

	t.Run("double disable fails and does not invalidate again", func(t *testing.T) {
		service, _, _, invalidator, accountID := newEntityFixture(t)
		created, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "A", Slug: "london"})
		require.NoError(t, err)

		_, err = service.SetModule(context.Background(), platformAdmin, created.ID, tenancy.ModulePayroll, false)
		require.NoError(t, err)
		_, err = service.SetModule(context.Background(), platformAdmin, created.ID, tenancy.ModulePayroll, false)
		assert.Error(t, err)
		assert.Len(t, invalidator.invalidated, 1)
	})
}

func TestEntityService_UpdateSettings(t *testing.T) {
	service, _, _, _, accountID := newEntityFixture(t)
	created, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "A", Slug: "london"})
	require.NoError(t, err)

	rate := decimal.NewFromInt(5)
	currency := "eur"
	resp, err := service.UpdateSettings(context.Background(), platformAdmin, created.ID, UpdateEntitySettingsRequest{
		DefaultTaxRate: &rate,
		Currency:       &currency,
	})

	require.NoError(t, err)
	assert.True(t, resp.DefaultTaxRate.Equal(rate))
	assert.Equal(t, "EUR", resp.Currency)
}

func TestEntityService_DisableActivate(t *testing.T) {
	service, entities, _, invalidator, accountID := newEntityFixture(t)
	created, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "A", Slug: "london"})
	require.NoError(t, err)

	require.NoError(t, service.Disable(context.Background(), platformAdmin, created.ID))
	stored, err := entities.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive())
	assert.Len(t, invalidator.invalidated, 1)

	require.NoError(t, service.Activate(context.Background(), platformAdmin, created.ID))
	stored, err = entities.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive())
}

func TestEntityService_TenantIsolation(t *testing.T) {
	newAccount := func(t *testing.T, accounts *fakeAccountRepo, code string) uuid.UUID {
		t.Helper()
		account, err := tenancy.NewAccount(code, code)
		require.NoError(t, err)
		require.NoError(t, accounts.Create(context.Background(), account))
		return account.ID
	}
	homedIn := func(role tenancy.Role, entityID uuid.UUID) access.Identity {
		return access.Identity{UserID: uuid.New(), Role: role, HomeEntityID: &entityID}
	}

	t.Run("account admin cannot administer another account's entity", func(t *testing.T) {
		service, entities, accounts, _, accountID := newEntityFixture(t)
		target, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "A", Slug: "london"})
		require.NoError(t, err)

		otherAccountID := newAccount(t, accounts, "rival-group")
		foreignHome, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: otherAccountID, Name: "R", Slug: "berlin"})
		require.NoError(t, err)
		intruder := homedIn(tenancy.RoleAccountAdmin, foreignHome.ID)

		_, err = service.SetModule(context.Background(), intruder, target.ID, tenancy.ModulePayroll, true)
		assert.ErrorIs(t, err, shared.ErrScopeViolation)

		currency := "EUR"
		_, err = service.UpdateSettings(context.Background(), intruder, target.ID, UpdateEntitySettingsRequest{Currency: &currency})
		assert.ErrorIs(t, err, shared.ErrScopeViolation)

		stored, err := entities.FindByID(context.Background(), target.ID)
		require.NoError(t, err)
		assert.False(t, stored.Settings.ModuleEnabled(tenancy.ModulePayroll))
		assert.NotEqual(t, "EUR", stored.Settings.Currency)
	})

	t.Run("entity admin is pinned to its home entity", func(t *testing.T) {
		service, _, _, _, accountID := newEntityFixture(t)
		home, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "A", Slug: "london"})
		require.NoError(t, err)
		sibling, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "B", Slug: "paris"})
		require.NoError(t, err)
		admin := homedIn(tenancy.RoleEntityAdmin, home.ID)

		_, err = service.Get(context.Background(), admin, home.ID)
		require.NoError(t, err)

		_, err = service.SetModule(context.Background(), admin, sibling.ID, tenancy.ModulePayroll, true)
		assert.ErrorIs(t, err, shared.ErrScopeViolation)
	})

	t.Run("account admin cannot provision under a foreign account", func(t *testing.T) {
		service, _, accounts, _, accountID := newEntityFixture(t)
		home, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "A", Slug: "london"})
		require.NoError(t, err)
		otherAccountID := newAccount(t, accounts, "rival-group")
		admin := homedIn(tenancy.RoleAccountAdmin, home.ID)

		_, err = service.Create(context.Background(), admin, CreateEntityRequest{AccountID: otherAccountID, Name: "X", Slug: "madrid"})
		assert.ErrorIs(t, err, shared.ErrScopeViolation)
	})

	t.Run("account admin can reactivate a disabled entity of its own account", func(t *testing.T) {
		service, entities, _, _, accountID := newEntityFixture(t)
		home, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "A", Slug: "london"})
		require.NoError(t, err)
		other, err := service.Create(context.Background(), platformAdmin, CreateEntityRequest{AccountID: accountID, Name: "B", Slug: "paris"})
		require.NoError(t, err)
		admin := homedIn(tenancy.RoleAccountAdmin, home.ID)

		require.NoError(t, service.Disable(context.Background(), admin, other.ID))
		require.NoError(t, service.Activate(context.Background(), admin, other.ID))

		stored, err := entities.FindByID(context.Background(), other.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsActive())
	})
}

func TestAccountService(t *testing.T) {
	t.Run("create normalizes the code", func(t *testing.T) {
		service := NewAccountService(newFakeAccountRepo(), zap.NewNop())

		resp, err := service.Create(context.Background(), CreateAccountRequest{Code: " acme-group ", Name: "Acme Group"})

		require.NoError(t, err)
		assert.Equal(t, "ACME-GROUP", resp.Code)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		service := NewAccountService(newFakeAccountRepo(), zap.NewNop())

		_, err := service.Create(context.Background(), CreateAccountRequest{Code: "acme", Name: "Acme"})
		require.NoError(t, err)

		_, err = service.Create(context.Background(), CreateAccountRequest{Code: "ACME", Name: "Other"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}
