package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/backend/internal/domain/tenancy"
)

func TestSerializer(t *testing.T) {
	s := NewSerializer()

	t.Run("registers all tenancy event types", func(t *testing.T) {
		for _, eventType := range []string{
			tenancy.EventTypeAccountCreated,
			tenancy.EventTypeEntityCreated,
			tenancy.EventTypeEntityStatusChanged,
			tenancy.EventTypeEntityModulesChanged,
			tenancy.EventTypeUserCreated,
		} {
			assert.True(t, s.IsRegistered(eventType), eventType)
		}
	})

	t.Run("round-trips an account created event", func(t *testing.T) {
		original := newAccountCreated(t)

		data, err := s.Serialize(original)
		require.NoError(t, err)

		restored, err := s.Deserialize(tenancy.EventTypeAccountCreated, data)
		require.NoError(t, err)

		event, ok := restored.(*tenancy.AccountCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, original.EventID(), event.EventID())
		assert.Equal(t, original.AggregateID(), event.AggregateID())
		assert.Equal(t, original.Code, event.Code)
		assert.Equal(t, original.Name, event.Name)
	})

	t.Run("rejects unknown event type", func(t *testing.T) {
		_, err := s.Deserialize("OrderShipped", []byte(`{}`))
		assert.ErrorContains(t, err, "unknown event type")
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		_, err := s.Deserialize(tenancy.EventTypeUserCreated, []byte("not json"))
		assert.Error(t, err)
	})
}
