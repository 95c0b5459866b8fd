package partner

import (
	"context"
	"testing"

	"github.com/fieldops/backend/internal/domain/access"
	"github.com/fieldops/backend/internal/domain/partner"
	"github.com/fieldops/backend/internal/domain/sequence"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClientRepo struct {
	clients map[uuid.UUID]*partner.Client
	// batchErrAfter fails CreateBatch once this many rows were accepted
	batchErrAfter int
	batchErr      error
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[uuid.UUID]*partner.Client)}
}

func (f *fakeClientRepo) Create(_ context.Context, c *partner.Client) error {
	f.clients[c.ID] = c
	return nil
}

func (f *fakeClientRepo) CreateBatch(_ context.Context, clients []*partner.Client) error {
	if f.batchErr != nil && len(clients) > f.batchErrAfter {
		return f.batchErr
	}
	for _, c := range clients {
		f.clients[c.ID] = c
	}
	return nil
}

func (f *fakeClientRepo) Update(_ context.Context, c *partner.Client) error {
	f.clients[c.ID] = c
	return nil
}

func (f *fakeClientRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (f *fakeClientRepo) FindByRefCode(_ context.Context, entityID uuid.UUID, refCode string) (*partner.Client, error) {
	for _, c := range f.clients {
		if c.EntityID == entityID && c.RefCode == refCode {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeClientRepo) FindByEntity(_ context.Context, entityID uuid.UUID) ([]*partner.Client, error) {
	var out []*partner.Client
	for _, c := range f.clients {
		if c.EntityID == entityID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClientRepo) RefCodeExists(_ context.Context, entityID uuid.UUID, refCode string) (bool, error) {
	for _, c := range f.clients {
		if c.EntityID == entityID && c.RefCode == refCode {
			return true, nil
		}
	}
	return false, nil
}

// clientRefProbe adapts the client repo into the allocator's probe contract
type clientRefProbe struct {
	clients *fakeClientRepo
}

func (p *clientRefProbe) CodeExists(ctx context.Context, entityID uuid.UUID, _ string, code string) (bool, error) {
	return p.clients.RefCodeExists(ctx, entityID, code)
}

type fakeEntityDirectory struct {
	active map[uuid.UUID]*tenancy.Entity
}

func (f *fakeEntityDirectory) FindByID(_ context.Context, id uuid.UUID) (*tenancy.Entity, error) {
	e, ok := f.active[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (f *fakeEntityDirectory) ListActiveIDs(_ context.Context) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, e := range f.active {
		if e.IsActive() {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeEntityDirectory) ListActiveIDsByAccount(_ context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, e := range f.active {
		if e.AccountID == accountID && e.IsActive() {
			out = append(out, id)
		}
	}
	return out, nil
}

type dirFlagSource struct {
	dir *fakeEntityDirectory
}

func (s *dirFlagSource) ModuleEnabled(ctx context.Context, entityID uuid.UUID, key tenancy.ModuleKey) (bool, error) {
	e, err := s.dir.FindByID(ctx, entityID)
	if err != nil {
		return false, err
	}
	return e.Settings.ModuleEnabled(key), nil
}

type memSeqStore struct {
	counters map[string]int64
}

func (m *memSeqStore) Increment(_ context.Context, entityID uuid.UUID, seriesKey string) (int64, error) {
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	k := entityID.String() + "/" + seriesKey
	m.counters[k]++
	return m.counters[k], nil
}

type clientFixture struct {
	service  *ClientService
	repo     *fakeClientRepo
	dir      *fakeEntityDirectory
	entityID uuid.UUID
	admin    access.Identity
	user     access.Identity
}

func newClientFixture(t *testing.T) *clientFixture {
	t.Helper()

	entity, err := tenancy.NewEntity(uuid.New(), "London Branch", "london")
	require.NoError(t, err)

	dir := &fakeEntityDirectory{active: map[uuid.UUID]*tenancy.Entity{entity.ID: entity}}
	repo := newFakeClientRepo()
	allocator := sequence.NewAllocator(&memSeqStore{}, &clientRefProbe{clients: repo})
	resolver := access.NewResolver(dir)
	gate := access.NewGate(&dirFlagSource{dir: dir})

	homeID := entity.ID
	return &clientFixture{
		service:  NewClientService(repo, allocator, resolver, gate, zap.NewNop()),
		repo:     repo,
		dir:      dir,
		entityID: entity.ID,
		admin:    access.Identity{UserID: uuid.New(), Role: tenancy.RolePlatformAdmin},
		user:     access.Identity{UserID: uuid.New(), Role: tenancy.RoleEntityUser, HomeEntityID: &homeID},
	}
}

func TestClientService_Create(t *testing.T) {
	t.Run("derives a ref code from the names", func(t *testing.T) {
		f := newClientFixture(t)

		resp, err := f.service.Create(context.Background(), f.user, f.entityID, CreateClientRequest{
			Name:      "Jane Smith",
			TaxStatus: "unverified",
		})

		require.NoError(t, err)
		assert.Equal(t, "JSM", resp.RefCode)
		assert.Equal(t, "unverified", resp.TaxStatus)
	})

	t.Run("prefers the company name when present", func(t *testing.T) {
		f := newClientFixture(t)

		resp, err := f.service.Create(context.Background(), f.user, f.entityID, CreateClientRequest{
			Name:        "Jane Smith",
			CompanyName: "Smithfield Plumbing Ltd",
			TaxStatus:   "unverified",
		})

		require.NoError(t, err)
		assert.Equal(t, "SPL", resp.RefCode, "derived from the company name, legal suffix dropped")
	})

	t.Run("walks to the next candidate on collision", func(t *testing.T) {
		f := newClientFixture(t)

		first, err := f.service.Create(context.Background(), f.admin, f.entityID, CreateClientRequest{
			Name: "Jane Smith", TaxStatus: "unverified",
		})
		require.NoError(t, err)
		second, err := f.service.Create(context.Background(), f.admin, f.entityID, CreateClientRequest{
			Name: "Jan Smythe", TaxStatus: "unverified",
		})
		require.NoError(t, err)

		assert.Equal(t, "JSM", first.RefCode)
		assert.Equal(t, "JSN", second.RefCode)
	})

	t.Run("honors an explicit free code verbatim", func(t *testing.T) {
		f := newClientFixture(t)

		resp, err := f.service.Create(context.Background(), f.admin, f.entityID, CreateClientRequest{
			Name: "Jane Smith", TaxStatus: "verified_net", RefCode: "QQQ",
		})

		require.NoError(t, err)
		assert.Equal(t, "QQQ", resp.RefCode)
	})

	t.Run("rejects an explicit taken code", func(t *testing.T) {
		f := newClientFixture(t)

		_, err := f.service.Create(context.Background(), f.admin, f.entityID, CreateClientRequest{
			Name: "Jane Smith", TaxStatus: "verified_net", RefCode: "QQQ",
		})
		require.NoError(t, err)

		_, err = f.service.Create(context.Background(), f.admin, f.entityID, CreateClientRequest{
			Name: "Quinn Quade", TaxStatus: "verified_net", RefCode: "QQQ",
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("rejects caller outside the entity scope", func(t *testing.T) {
		f := newClientFixture(t)
		otherHome := uuid.New()
		stranger := access.Identity{UserID: uuid.New(), Role: tenancy.RoleEntityUser, HomeEntityID: &otherHome}

		_, err := f.service.Create(context.Background(), stranger, f.entityID, CreateClientRequest{
			Name: "Jane Smith", TaxStatus: "unverified",
		})
		assert.ErrorIs(t, err, shared.ErrScopeViolation)
	})

	t.Run("denies when the clients module is off", func(t *testing.T) {
		f := newClientFixture(t)
		entity, err := f.dir.FindByID(context.Background(), f.entityID)
		require.NoError(t, err)
		require.NoError(t, entity.DisableModule(tenancy.ModuleClients))

		_, err = f.service.Create(context.Background(), f.admin, f.entityID, CreateClientRequest{
			Name: "Jane Smith", TaxStatus: "unverified",
		})
		assert.ErrorIs(t, err, shared.ErrAccessDenied)
	})
}

func TestClientService_Import(t *testing.T) {
	t.Run("imports a clean file and allocates ref codes", func(t *testing.T) {
		f := newClientFixture(t)
		data := []byte("name,company_name,tax_status\n" +
			"Jane Smith,,unverified\n" +
			"Quinn Quade,Quade Roofing Ltd,verified_net\n")

		result, err := f.service.Import(context.Background(), f.admin, f.entityID, data)

		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 2, result.Imported)
		assert.Empty(t, result.Errors)
		require.Len(t, result.Clients, 2)
		assert.Equal(t, "JSM", result.Clients[0].RefCode)
		assert.Equal(t, "QRO", result.Clients[1].RefCode)

		stored, err := f.repo.FindByEntity(context.Background(), f.entityID)
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})

	t.Run("a file with any bad row imports nothing", func(t *testing.T) {
		f := newClientFixture(t)
		data := []byte("name,tax_status\n" +
			"Jane Smith,unverified\n" +
			"Quinn Quade,not-a-status\n")

		result, err := f.service.Import(context.Background(), f.admin, f.entityID, data)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Imported)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, 3, result.Errors[0].Line)

		stored, err := f.repo.FindByEntity(context.Background(), f.entityID)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("rows sharing a derived code walk to distinct codes", func(t *testing.T) {
		f := newClientFixture(t)
		data := []byte("name,tax_status\n" +
			"Jane Smith,unverified\n" +
			"Joan Smythe,unverified\n")

		result, err := f.service.Import(context.Background(), f.admin, f.entityID, data)

		require.NoError(t, err)
		require.Len(t, result.Clients, 2)
		assert.Equal(t, "JSM", result.Clients[0].RefCode)
		assert.Equal(t, "JSN", result.Clients[1].RefCode)
	})

	t.Run("a storage failure leaves nothing imported", func(t *testing.T) {
		f := newClientFixture(t)
		f.repo.batchErr = shared.ErrTransientStorage
		f.repo.batchErrAfter = 1
		data := []byte("name,tax_status\n" +
			"Jane Smith,unverified\n" +
			"Quinn Quade,verified_net\n")

		_, err := f.service.Import(context.Background(), f.admin, f.entityID, data)

		require.ErrorIs(t, err, shared.ErrTransientStorage)
		stored, err := f.repo.FindByEntity(context.Background(), f.entityID)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("rejects a structurally broken file", func(t *testing.T) {
		f := newClientFixture(t)

		_, err := f.service.Import(context.Background(), f.admin, f.entityID, []byte("name,email\nJane,j@x.test\n"))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_IMPORT_FILE", domainErr.Code)
	})

	t.Run("scope is enforced before the file is touched", func(t *testing.T) {
		f := newClientFixture(t)
		otherHome := uuid.New()
		stranger := access.Identity{UserID: uuid.New(), Role: tenancy.RoleEntityUser, HomeEntityID: &otherHome}

		_, err := f.service.Import(context.Background(), stranger, f.entityID, []byte("garbage"))
		assert.ErrorIs(t, err, shared.ErrScopeViolation)
	})
}

func TestClientService_Update(t *testing.T) {
	t.Run("edits fields but never the ref code", func(t *testing.T) {
		f := newClientFixture(t)
		created, err := f.service.Create(context.Background(), f.admin, f.entityID, CreateClientRequest{
			Name: "Jane Smith", CompanyName: "Smith Ltd", TaxStatus: "unverified",
		})
		require.NoError(t, err)

		name := "Jane Smythe"
		status := "verified_gross"
		updated, err := f.service.Update(context.Background(), f.admin, created.ID, UpdateClientRequest{
			Name:      &name,
			TaxStatus: &status,
		})

		require.NoError(t, err)
		assert.Equal(t, "Jane Smythe", updated.Name)
		assert.Equal(t, "verified_gross", updated.TaxStatus)
		assert.Equal(t, created.RefCode, updated.RefCode)
	})
}

func TestClientService_Get(t *testing.T) {
	t.Run("scope is enforced on reads", func(t *testing.T) {
		f := newClientFixture(t)
		created, err := f.service.Create(context.Background(), f.admin, f.entityID, CreateClientRequest{
			Name: "Jane Smith", TaxStatus: "unverified",
		})
		require.NoError(t, err)

		otherHome := uuid.New()
		stranger := access.Identity{UserID: uuid.New(), Role: tenancy.RoleEntityUser, HomeEntityID: &otherHome}

		_, err = f.service.Get(context.Background(), stranger, created.ID)
		assert.ErrorIs(t, err, shared.ErrScopeViolation)
	})
}

func TestClientService_Deactivate(t *testing.T) {
	f := newClientFixture(t)
	created, err := f.service.Create(context.Background(), f.admin, f.entityID, CreateClientRequest{
		Name: "Jane Smith", TaxStatus: "unverified",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Deactivate(context.Background(), f.admin, created.ID))

	got, err := f.service.Get(context.Background(), f.admin, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}
