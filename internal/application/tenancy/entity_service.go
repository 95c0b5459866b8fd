package tenancy

import (
	"context"

	"github.com/fieldops/backend/internal/domain/access"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FlagInvalidator drops cached module flags for an entity after its settings
// change. The cache package's flag source satisfies it.
type FlagInvalidator interface {
	Invalidate(ctx context.Context, entityID uuid.UUID) error
}

// EntityService handles operating-entity administration, including the
// per-entity module toggles that feed the permission gate. Every operation
// re-checks the caller's scope against the target; the route-level role
// gate only keeps plain users out.
type EntityService struct {
	entities tenancy.EntityRepository
	accounts tenancy.AccountRepository
	resolver *access.Resolver
	flags    FlagInvalidator
	logger   *zap.Logger
}

// NewEntityService creates a new entity service. flags may be nil when no
// module-flag cache is wired, e.g. in tests.
func NewEntityService(
	entities tenancy.EntityRepository,
	accounts tenancy.AccountRepository,
	resolver *access.Resolver,
	flags FlagInvalidator,
	logger *zap.Logger,
) *EntityService {
	return &EntityService{
		entities: entities,
		accounts: accounts,
		resolver: resolver,
		flags:    flags,
		logger:   logger,
	}
}

// authorize checks that the caller may administer the target entity.
// Platform and account admins are checked against the owning account so
// disabled entities can still be administered and re-activated; entity
// admins are checked against the active-entity set, which pins them to
// their own home entity.
func (s *EntityService) authorize(ctx context.Context, identity access.Identity, accountID, entityID uuid.UUID) error {
	var (
		ok  bool
		err error
	)
	switch identity.Role {
	case tenancy.RolePlatformAdmin, tenancy.RoleAccountAdmin:
		ok, err = s.resolver.CanAccessAccount(ctx, identity, accountID)
	default:
		ok, err = s.resolver.CanAccessEntity(ctx, identity, entityID)
	}
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("Scope violation on entity administration",
			zap.String("user_id", identity.UserID.String()),
			zap.String("entity_id", entityID.String()),
		)
		return shared.ErrScopeViolation
	}
	return nil
}

// Create creates a new operating entity under an account. The caller must
// be scoped to the target account; an account admin cannot provision
// entities under foreign accounts.
func (s *EntityService) Create(ctx context.Context, identity access.Identity, req CreateEntityRequest) (*EntityResponse, error) {
	ok, err := s.resolver.CanAccessAccount(ctx, identity, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Warn("Scope violation on entity provisioning",
			zap.String("user_id", identity.UserID.String()),
			zap.String("account_id", req.AccountID.String()),
		)
		return nil, shared.ErrScopeViolation
	}

	account, err := s.accounts.FindByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Cannot add entities to a deactivated account")
	}

	entity, err := tenancy.NewEntity(account.ID, req.Name, req.Slug)
	if err != nil {
		return nil, err
	}

	exists, err := s.entities.ExistsBySlug(ctx, account.ID, entity.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Entity slug already in use within account")
	}

	if err := s.entities.Create(ctx, entity); err != nil {
		return nil, err
	}

	s.logger.Info("Entity created",
		zap.String("slug", entity.Slug),
		zap.String("account_id", account.ID.String()),
	)

	resp := toEntityResponse(entity)
	return &resp, nil
}

// Get retrieves an entity by ID, enforcing the caller's scope
func (s *EntityService) Get(ctx context.Context, identity access.Identity, id uuid.UUID) (*EntityResponse, error) {
	entity, err := s.entities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, identity, entity.AccountID, entity.ID); err != nil {
		return nil, err
	}
	resp := toEntityResponse(entity)
	return &resp, nil
}

// ListByAccount retrieves all entities of an account the caller is scoped to
func (s *EntityService) ListByAccount(ctx context.Context, identity access.Identity, accountID uuid.UUID) ([]EntityResponse, error) {
	ok, err := s.resolver.CanAccessAccount(ctx, identity, accountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrScopeViolation
	}

	entities, err := s.entities.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]EntityResponse, 0, len(entities))
	for _, e := range entities {
		out = append(out, toEntityResponse(e))
	}
	return out, nil
}

// UpdateSettings applies partial settings changes to an entity
func (s *EntityService) UpdateSettings(ctx context.Context, identity access.Identity, id uuid.UUID, req UpdateEntitySettingsRequest) (*EntityResponse, error) {
	entity, err := s.entities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, identity, entity.AccountID, entity.ID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := entity.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.DefaultTaxRate != nil {
		if err := entity.SetDefaultTaxRate(*req.DefaultTaxRate); err != nil {
			return nil, err
		}
	}
	if req.Currency != nil {
		if err := entity.SetCurrency(*req.Currency); err != nil {
			return nil, err
		}
	}

	if err := s.entities.Update(ctx, entity); err != nil {
		return nil, err
	}

	resp := toEntityResponse(entity)
	return &resp, nil
}

// SetModule enables or disables a business module for an entity. The cached
// flag set is invalidated after the change is stored so the gate observes it
// promptly on every instance.
func (s *EntityService) SetModule(ctx context.Context, identity access.Identity, id uuid.UUID, key tenancy.ModuleKey, enabled bool) (*EntityResponse, error) {
	entity, err := s.entities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, identity, entity.AccountID, entity.ID); err != nil {
		return nil, err
	}

	if enabled {
		err = entity.EnableModule(key)
	} else {
		err = entity.DisableModule(key)
	}
	if err != nil {
		return nil, err
	}

	if err := s.entities.Update(ctx, entity); err != nil {
		return nil, err
	}

	s.invalidateFlags(ctx, entity.ID)

	s.logger.Info("Module toggled",
		zap.String("entity_id", entity.ID.String()),
		zap.String("module", string(key)),
		zap.Bool("enabled", enabled),
	)

	resp := toEntityResponse(entity)
	return &resp, nil
}

// Disable takes an entity out of service. Scope resolution excludes disabled
// entities, so existing sessions lose access on their next request.
func (s *EntityService) Disable(ctx context.Context, identity access.Identity, id uuid.UUID) error {
	entity, err := s.entities.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, identity, entity.AccountID, entity.ID); err != nil {
		return err
	}
	if err := entity.Disable(); err != nil {
		return err
	}
	if err := s.entities.Update(ctx, entity); err != nil {
		return err
	}

	s.invalidateFlags(ctx, entity.ID)

	s.logger.Info("Entity disabled", zap.String("slug", entity.Slug))
	return nil
}

// Activate returns a disabled entity to service
func (s *EntityService) Activate(ctx context.Context, identity access.Identity, id uuid.UUID) error {
	entity, err := s.entities.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, identity, entity.AccountID, entity.ID); err != nil {
		return err
	}
	if err := entity.Activate(); err != nil {
		return err
	}
	if err := s.entities.Update(ctx, entity); err != nil {
		return err
	}

	s.invalidateFlags(ctx, entity.ID)
	return nil
}

func (s *EntityService) invalidateFlags(ctx context.Context, entityID uuid.UUID) {
	if s.flags == nil {
		return
	}
	if err := s.flags.Invalidate(ctx, entityID); err != nil {
		// Stale flags age out via TTL; the change is already durable.
		s.logger.Warn("Failed to invalidate module flag cache",
			zap.String("entity_id", entityID.String()),
			zap.Error(err),
		)
	}
}
