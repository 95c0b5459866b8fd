package access

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// EntityDirectory is the read-only view of the tenancy model the resolver
// needs. tenancy.EntityRepository satisfies it.
type EntityDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Entity, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	ListActiveIDsByAccount(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error)
}

// Resolver computes the set of entities an identity may read or write.
// It is read-only against the tenancy model and safe for concurrent use.
type Resolver struct {
	entities EntityDirectory
}

// NewResolver creates a new access resolver
func NewResolver(entities EntityDirectory) *Resolver {
	return &Resolver{entities: entities}
}

// AccessibleEntities returns the IDs of every entity the identity may act on:
//
//   - PlatformAdmin: every active entity in the system
//   - AccountAdmin:  every active entity of the home entity's account
//   - EntityAdmin / EntityUser: the home entity alone
//
// An identity with no home entity resolves to the empty set; so does one
// whose home entity has been disabled, which is how stale sessions lose
// access mid-flight. Only storage failures produce an error.
func (r *Resolver) AccessibleEntities(ctx context.Context, identity Identity) ([]uuid.UUID, error) {
	if identity.Role == tenancy.RolePlatformAdmin {
		return r.entities.ListActiveIDs(ctx)
	}

	if !identity.HasHomeEntity() {
		return []uuid.UUID{}, nil
	}

	home, err := r.entities.FindByID(ctx, *identity.HomeEntityID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return []uuid.UUID{}, nil
		}
		return nil, err
	}
	if !home.IsActive() {
		return []uuid.UUID{}, nil
	}

	switch identity.Role {
	case tenancy.RoleAccountAdmin:
		return r.entities.ListActiveIDsByAccount(ctx, home.AccountID)
	case tenancy.RoleEntityAdmin, tenancy.RoleEntityUser:
		return []uuid.UUID{home.ID}, nil
	default:
		return []uuid.UUID{}, nil
	}
}

// CanAccessAccount reports whether the identity may administer records
// belonging to accountID. Platform admins may touch any account; every other
// role is bound to the account of its active home entity. This is the check
// for account-level administration (provisioning entities, re-activating
// disabled ones), where the active-entity set is the wrong yardstick.
func (r *Resolver) CanAccessAccount(ctx context.Context, identity Identity, accountID uuid.UUID) (bool, error) {
	if accountID == uuid.Nil {
		return false, nil
	}
	if identity.Role == tenancy.RolePlatformAdmin {
		return true, nil
	}
	if !identity.HasHomeEntity() {
		return false, nil
	}

	home, err := r.entities.FindByID(ctx, *identity.HomeEntityID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !home.IsActive() {
		return false, nil
	}
	return home.AccountID == accountID, nil
}

// CanAccessEntity reports whether entityID is in the identity's resolved set.
// This is the mandatory scope intersection: it must be applied to a record's
// owning entity before the record is returned, regardless of any entity ID
// the caller or its session supplied.
func (r *Resolver) CanAccessEntity(ctx context.Context, identity Identity, entityID uuid.UUID) (bool, error) {
	if entityID == uuid.Nil {
		return false, nil
	}

	ids, err := r.AccessibleEntities(ctx, identity)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == entityID {
			return true, nil
		}
	}
	return false, nil
}
