package access

import (
	"context"

	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// ModuleFlagSource answers whether a module is enabled for an entity. The
// production implementation is the tiered module-flag cache in front of the
// entity settings store.
type ModuleFlagSource interface {
	ModuleEnabled(ctx context.Context, entityID uuid.UUID, key tenancy.ModuleKey) (bool, error)
}

// Gate answers allow/deny for (identity, resource, action) and for
// (identity, module) questions. Deny is an ordinary answer here, not an
// error: read paths render denied things as hidden, and only the mutating
// application services escalate deny into a hard rejection.
//
// The gate does not check entity scope; that is the resolver's job and the
// caller's responsibility.
type Gate struct {
	modules ModuleFlagSource
}

// NewGate creates a new permission gate
func NewGate(modules ModuleFlagSource) *Gate {
	return &Gate{modules: modules}
}

// Authorize reports whether the identity's role permits the action on the
// resource. Admin roles allow every pair; EntityUser consults the fixed
// capability table; unknown roles deny.
func (g *Gate) Authorize(identity Identity, resource Resource, action Action) bool {
	if identity.Role.IsAdmin() {
		return true
	}
	if identity.Role != tenancy.RoleEntityUser {
		return false
	}
	_, ok := entityUserCapabilities[capability{resource: resource, action: action}]
	return ok
}

// AuthorizeModule reports whether the identity may use a module-gated feature
// on the target entity. Module gating is entity-level policy: even a fully
// entitled role is denied when the entity has the module switched off. Both
// the role check and the flag check must pass.
func (g *Gate) AuthorizeModule(ctx context.Context, identity Identity, entityID uuid.UUID, key tenancy.ModuleKey) (bool, error) {
	if !identity.Role.IsValid() {
		return false, nil
	}
	if !key.IsValid() {
		return false, nil
	}

	enabled, err := g.modules.ModuleEnabled(ctx, entityID, key)
	if err != nil {
		return false, err
	}
	return enabled, nil
}
