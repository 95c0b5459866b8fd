// Package access implements tenant-scoped authorization: resolving the set
// of entities a principal may touch, and gating individual actions by role
// and per-entity module policy.
//
// The two checks are independent and both mandatory for mutating operations:
// the resolver bounds WHERE a principal may act, the gate bounds WHAT it may
// do there. Anything carried in a session token (an active entity, cached
// module flags) is advisory only and re-validated here on every call.
package access

import (
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// Identity is the authenticated principal as supplied by the identity
// provider for a single request. It is a value; the access package never
// mutates or stores it.
type Identity struct {
	UserID       uuid.UUID
	Role         tenancy.Role
	HomeEntityID *uuid.UUID
}

// HasHomeEntity reports whether the identity is attached to a home entity
func (i Identity) HasHomeEntity() bool {
	return i.HomeEntityID != nil && *i.HomeEntityID != uuid.Nil
}
