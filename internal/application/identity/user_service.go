package identity

import (
	"context"

	"github.com/fieldops/backend/internal/domain/access"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user administration. Every operation re-checks the
// caller's scope against the target user's home entity, and nobody may
// grant a role broader than their own.
type UserService struct {
	users    tenancy.UserRepository
	entities tenancy.EntityRepository
	resolver *access.Resolver
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	users tenancy.UserRepository,
	entities tenancy.EntityRepository,
	resolver *access.Resolver,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:    users,
		entities: entities,
		resolver: resolver,
		logger:   logger,
	}
}

// authorizeHomeEntity checks that the caller may administer users homed in
// the given entity. A nil home entity marks a platform operator, which only
// a platform admin may touch.
func (s *UserService) authorizeHomeEntity(ctx context.Context, identity access.Identity, homeEntityID *uuid.UUID) error {
	if homeEntityID == nil {
		if identity.Role == tenancy.RolePlatformAdmin {
			return nil
		}
		return shared.ErrScopeViolation
	}

	entity, err := s.entities.FindByID(ctx, *homeEntityID)
	if err != nil {
		return err
	}

	var ok bool
	switch identity.Role {
	case tenancy.RolePlatformAdmin, tenancy.RoleAccountAdmin:
		ok, err = s.resolver.CanAccessAccount(ctx, identity, entity.AccountID)
	default:
		ok, err = s.resolver.CanAccessEntity(ctx, identity, entity.ID)
	}
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("Scope violation on user administration",
			zap.String("user_id", identity.UserID.String()),
			zap.String("home_entity_id", homeEntityID.String()),
		)
		return shared.ErrScopeViolation
	}
	return nil
}

// authorizeGrant rejects a role assignment broader than the caller's own
func (s *UserService) authorizeGrant(identity access.Identity, role tenancy.Role) error {
	if !identity.Role.Covers(role) {
		s.logger.Warn("Role grant denied",
			zap.String("user_id", identity.UserID.String()),
			zap.String("caller_role", string(identity.Role)),
			zap.String("requested_role", string(role)),
		)
		return shared.ErrAccessDenied
	}
	return nil
}

// Create creates a new user. A home entity is required for every role except
// platform admin and must be within the caller's scope; the granted role may
// not be broader than the caller's own.
func (s *UserService) Create(ctx context.Context, identity access.Identity, req CreateUserRequest) (*UserResponse, error) {
	role, err := tenancy.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeGrant(identity, role); err != nil {
		return nil, err
	}

	if req.HomeEntityID == nil && role != tenancy.RolePlatformAdmin {
		return nil, shared.NewDomainError("INVALID_INPUT", "A home entity is required for this role")
	}
	if err := s.authorizeHomeEntity(ctx, identity, req.HomeEntityID); err != nil {
		return nil, err
	}

	user, err := tenancy.NewUser(req.Username, req.Password, role, req.HomeEntityID)
	if err != nil {
		return nil, err
	}
	if req.Email != "" {
		if err := user.SetEmail(req.Email); err != nil {
			return nil, err
		}
	}
	if req.DisplayName != "" {
		if err := user.SetDisplayName(req.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)

	resp := toUserResponse(user)
	return &resp, nil
}

// Get retrieves a user by ID, enforcing the caller's scope
func (s *UserService) Get(ctx context.Context, identity access.Identity, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeHomeEntity(ctx, identity, user.HomeEntityID); err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Update applies partial changes to a user. A role change is double-checked:
// the caller must cover both the target's current role and the new one, so
// narrow admins can neither demote broader principals nor promote past
// themselves.
func (s *UserService) Update(ctx context.Context, identity access.Identity, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeHomeEntity(ctx, identity, user.HomeEntityID); err != nil {
		return nil, err
	}

	if req.Email != nil {
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.DisplayName != nil {
		if err := user.SetDisplayName(*req.DisplayName); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		role, err := tenancy.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		if err := s.authorizeGrant(identity, user.Role); err != nil {
			return nil, err
		}
		if err := s.authorizeGrant(identity, role); err != nil {
			return nil, err
		}
		if err := user.ChangeRole(role); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		if err := user.ChangePassword(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// Deactivate blocks a user from logging in without deleting the record
func (s *UserService) Deactivate(ctx context.Context, identity access.Identity, id uuid.UUID) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeHomeEntity(ctx, identity, user.HomeEntityID); err != nil {
		return err
	}
	if err := s.authorizeGrant(identity, user.Role); err != nil {
		return err
	}
	if err := user.Deactivate(); err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("User deactivated", zap.String("username", user.Username))
	return nil
}

// ListByEntity retrieves the users homed in an entity within the caller's scope
func (s *UserService) ListByEntity(ctx context.Context, identity access.Identity, entityID uuid.UUID) ([]UserResponse, error) {
	if err := s.authorizeHomeEntity(ctx, identity, &entityID); err != nil {
		return nil, err
	}

	users, err := s.users.FindByHomeEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}
