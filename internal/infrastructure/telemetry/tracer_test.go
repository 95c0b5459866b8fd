package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTracerProvider(t *testing.T) {
	t.Run("disabled config yields no-op provider", func(t *testing.T) {
		tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())

		require.NoError(t, err)
		assert.False(t, tp.IsEnabled())
		assert.NotNil(t, tp.Tracer("test"))
	})

	t.Run("shutdown of disabled provider is a no-op", func(t *testing.T) {
		tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
		require.NoError(t, err)

		assert.NoError(t, tp.Shutdown(context.Background()))
		assert.NoError(t, tp.ForceFlush(context.Background()))
	})
}
