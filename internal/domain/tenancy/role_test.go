package tenancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Run("accepts the four known roles", func(t *testing.T) {
		for _, r := range Roles() {
			parsed, err := ParseRole(string(r))
			require.NoError(t, err)
			assert.Equal(t, r, parsed)
		}
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		parsed, err := ParseRole("  Platform_Admin ")
		require.NoError(t, err)
		assert.Equal(t, RolePlatformAdmin, parsed)
	})

	t.Run("rejects anything outside the closed set", func(t *testing.T) {
		for _, s := range []string{"", "superuser", "admin", "entity_owner"} {
			_, err := ParseRole(s)
			assert.Error(t, err, "input %q", s)
		}
	})
}

func TestRoleIsAdmin(t *testing.T) {
	assert.True(t, RolePlatformAdmin.IsAdmin())
	assert.True(t, RoleAccountAdmin.IsAdmin())
	assert.True(t, RoleEntityAdmin.IsAdmin())
	assert.False(t, RoleEntityUser.IsAdmin())
	assert.False(t, Role("superuser").IsAdmin())
}

func TestParseModuleKey(t *testing.T) {
	t.Run("accepts every known module", func(t *testing.T) {
		for _, m := range Modules() {
			parsed, err := ParseModuleKey(string(m))
			require.NoError(t, err)
			assert.Equal(t, m, parsed)
		}
	})

	t.Run("normalizes case", func(t *testing.T) {
		parsed, err := ParseModuleKey("Payroll")
		require.NoError(t, err)
		assert.Equal(t, ModulePayroll, parsed)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		for _, s := range []string{"", "warehouse", "invoices"} {
			_, err := ParseModuleKey(s)
			assert.Error(t, err, "input %q", s)
		}
	})
}
