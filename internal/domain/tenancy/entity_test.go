package tenancy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntity(t *testing.T) *Entity {
	entity, err := NewEntity(uuid.New(), "London Branch", "london")
	require.NoError(t, err)
	return entity
}

func TestNewEntity(t *testing.T) {
	t.Run("creates an active entity with default settings", func(t *testing.T) {
		accountID := uuid.New()
		entity, err := NewEntity(accountID, "London Branch", "London")
		require.NoError(t, err)

		assert.Equal(t, accountID, entity.AccountID)
		assert.Equal(t, "london", entity.Slug)
		assert.True(t, entity.IsActive())
		assert.True(t, entity.Settings.DefaultTaxRate.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, "GBP", entity.Settings.Currency)
		assert.Len(t, entity.GetDomainEvents(), 1)
	})

	t.Run("all modules enabled by default", func(t *testing.T) {
		entity := newTestEntity(t)
		for _, m := range Modules() {
			assert.True(t, entity.Settings.ModuleEnabled(m), "module %s", m)
		}
	})

	t.Run("rejects nil account", func(t *testing.T) {
		_, err := NewEntity(uuid.Nil, "Branch", "branch")
		assert.Error(t, err)
	})

	t.Run("rejects invalid slugs", func(t *testing.T) {
		for _, slug := range []string{"", "has spaces", "bad_slug!"} {
			_, err := NewEntity(uuid.New(), "Branch", slug)
			assert.Error(t, err, "slug %q", slug)
		}
	})
}

func TestEntityStatus(t *testing.T) {
	t.Run("disable keeps data and marks status", func(t *testing.T) {
		entity := newTestEntity(t)
		require.NoError(t, entity.Disable())

		assert.False(t, entity.IsActive())
		assert.Equal(t, EntityStatusDisabled, entity.Status)
		assert.Error(t, entity.Disable())
	})

	t.Run("activate restores a disabled entity", func(t *testing.T) {
		entity := newTestEntity(t)
		require.NoError(t, entity.Disable())
		require.NoError(t, entity.Activate())

		assert.True(t, entity.IsActive())
		assert.Error(t, entity.Activate())
	})
}

func TestEntityModules(t *testing.T) {
	t.Run("disable removes a module from the enabled set", func(t *testing.T) {
		entity := newTestEntity(t)
		require.NoError(t, entity.DisableModule(ModulePayroll))

		assert.False(t, entity.Settings.ModuleEnabled(ModulePayroll))
		assert.True(t, entity.Settings.ModuleEnabled(ModuleInvoicing))
	})

	t.Run("enable restores a disabled module", func(t *testing.T) {
		entity := newTestEntity(t)
		require.NoError(t, entity.DisableModule(ModulePayroll))
		require.NoError(t, entity.EnableModule(ModulePayroll))

		assert.True(t, entity.Settings.ModuleEnabled(ModulePayroll))
	})

	t.Run("double toggles are rejected", func(t *testing.T) {
		entity := newTestEntity(t)
		assert.Error(t, entity.EnableModule(ModulePayroll))

		require.NoError(t, entity.DisableModule(ModulePayroll))
		assert.Error(t, entity.DisableModule(ModulePayroll))
	})

	t.Run("unknown module keys are rejected", func(t *testing.T) {
		entity := newTestEntity(t)
		assert.Error(t, entity.EnableModule(ModuleKey("warehouse")))
		assert.Error(t, entity.DisableModule(ModuleKey("warehouse")))
	})

	t.Run("module changes emit events", func(t *testing.T) {
		entity := newTestEntity(t)
		entity.ClearDomainEvents()

		require.NoError(t, entity.DisableModule(ModuleReports))
		require.NoError(t, entity.EnableModule(ModuleReports))
		assert.Len(t, entity.GetDomainEvents(), 2)
	})
}

func TestEntitySettings(t *testing.T) {
	t.Run("tax rate bounds", func(t *testing.T) {
		entity := newTestEntity(t)

		require.NoError(t, entity.SetDefaultTaxRate(decimal.NewFromInt(5)))
		assert.True(t, entity.Settings.DefaultTaxRate.Equal(decimal.NewFromInt(5)))

		assert.Error(t, entity.SetDefaultTaxRate(decimal.NewFromInt(-1)))
		assert.Error(t, entity.SetDefaultTaxRate(decimal.NewFromInt(101)))
	})

	t.Run("currency must be a three letter code", func(t *testing.T) {
		entity := newTestEntity(t)

		require.NoError(t, entity.SetCurrency("eur"))
		assert.Equal(t, "EUR", entity.Settings.Currency)

		assert.Error(t, entity.SetCurrency("EURO"))
		assert.Error(t, entity.SetCurrency(""))
	})
}
