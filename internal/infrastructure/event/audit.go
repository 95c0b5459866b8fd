package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/fieldops/backend/internal/domain/shared"
)

// AuditLogger subscribes to every domain event and writes a structured
// audit line carrying the serialized payload. It is the default consumer
// wired into the server so that account and entity lifecycle changes
// always leave a trace.
type AuditLogger struct {
	logger     *zap.Logger
	serializer *Serializer
}

// NewAuditLogger creates an audit subscriber
func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogger{
		logger:     logger,
		serializer: NewSerializer(),
	}
}

// EventTypes returns nil to subscribe to all events
func (a *AuditLogger) EventTypes() []string {
	return nil
}

// Handle logs the event
func (a *AuditLogger) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	if payload, err := a.serializer.Serialize(event); err == nil {
		fields = append(fields, zap.ByteString("payload", payload))
	}

	a.logger.Info("domain event", fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogger)(nil)
