package tenancy

import (
	"strings"

	"github.com/fieldops/backend/internal/domain/shared"
)

// Role is the closed set of principal classes. It determines the default
// breadth of access; there is no per-user entity allow-list anywhere in the
// system. Broader access is always derived from the role and the home entity.
type Role string

const (
	// RolePlatformAdmin may act across every account in the system.
	RolePlatformAdmin Role = "platform_admin"
	// RoleAccountAdmin may act across every entity of its home entity's account.
	RoleAccountAdmin Role = "account_admin"
	// RoleEntityAdmin has full rights within its home entity only.
	RoleEntityAdmin Role = "entity_admin"
	// RoleEntityUser has a restricted action set within its home entity only.
	RoleEntityUser Role = "entity_user"
)

// allRoles is ordered from broadest to narrowest scope.
var allRoles = []Role{RolePlatformAdmin, RoleAccountAdmin, RoleEntityAdmin, RoleEntityUser}

// ParseRole converts a string into a Role, rejecting anything outside the
// closed set.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_ROLE", "Unknown role: "+s)
	}
	return r, nil
}

// IsValid reports whether the role is one of the four enumerated values
func (r Role) IsValid() bool {
	switch r {
	case RolePlatformAdmin, RoleAccountAdmin, RoleEntityAdmin, RoleEntityUser:
		return true
	default:
		return false
	}
}

// String returns the wire representation of the role
func (r Role) String() string {
	return string(r)
}

// IsAdmin reports whether the role allows every (resource, action) pair
// within its resolved entity scope. Scope itself is checked elsewhere.
func (r Role) IsAdmin() bool {
	switch r {
	case RolePlatformAdmin, RoleAccountAdmin, RoleEntityAdmin:
		return true
	default:
		return false
	}
}

// scopeRank orders roles by breadth; lower is broader
func (r Role) scopeRank() int {
	for i, role := range allRoles {
		if r == role {
			return i
		}
	}
	return len(allRoles)
}

// Covers reports whether r is at least as broad as other. Applied when one
// principal grants a role to another: nobody may hand out a role broader
// than their own.
func (r Role) Covers(other Role) bool {
	return r.scopeRank() <= other.scopeRank()
}

// Roles returns the four roles ordered from broadest to narrowest scope
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}
