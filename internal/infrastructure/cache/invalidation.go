package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// moduleFlagChannel is the pub/sub channel for cross-instance invalidation
const moduleFlagChannel = "module_flags:invalidate"

// InvalidationMessage tells other instances to drop their L1 entry for an
// entity after a settings change.
type InvalidationMessage struct {
	EntityID string `json:"entity_id"`
}

// RedisInvalidator publishes and subscribes to module-flag invalidation
// messages over Redis pub/sub.
type RedisInvalidator struct {
	client *redis.Client
	logger *zap.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
}

// NewRedisInvalidator creates a new invalidator on an existing client
func NewRedisInvalidator(client *redis.Client, logger *zap.Logger) *RedisInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisInvalidator{client: client, logger: logger}
}

// Publish notifies all instances that an entity's module flags changed
func (i *RedisInvalidator) Publish(ctx context.Context, entityID uuid.UUID) error {
	payload, err := json.Marshal(InvalidationMessage{EntityID: entityID.String()})
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation message: %w", err)
	}

	if err := i.client.Publish(ctx, moduleFlagChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation message: %w", err)
	}
	return nil
}

// Subscribe listens for invalidation messages and calls handler for each one.
// It blocks until the context is cancelled or the subscription closes.
func (i *RedisInvalidator) Subscribe(ctx context.Context, handler func(entityID uuid.UUID)) error {
	i.mu.Lock()
	i.pubsub = i.client.Subscribe(ctx, moduleFlagChannel)
	pubsub := i.pubsub
	i.mu.Unlock()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var inv InvalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &inv); err != nil {
				i.logger.Warn("Malformed invalidation message", zap.Error(err))
				continue
			}
			entityID, err := uuid.Parse(inv.EntityID)
			if err != nil {
				i.logger.Warn("Invalid entity ID in invalidation message",
					zap.String("entity_id", inv.EntityID))
				continue
			}
			handler(entityID)
		}
	}
}

// Close stops the subscription
func (i *RedisInvalidator) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.pubsub != nil {
		return i.pubsub.Close()
	}
	return nil
}
