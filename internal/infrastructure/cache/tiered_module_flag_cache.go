package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Invalidator propagates invalidation to other instances. The Redis pub/sub
// implementation is the production one; a nil invalidator is valid for
// single-instance deployments.
type Invalidator interface {
	Publish(ctx context.Context, entityID uuid.UUID) error
	Subscribe(ctx context.Context, handler func(entityID uuid.UUID)) error
	Close() error
}

// TieredModuleFlagCache composes an in-process L1 in front of a shared L2
// with a read-through pattern. Writes go to both layers and publish an
// invalidation message so other instances drop their L1 entry.
type TieredModuleFlagCache struct {
	l1          ModuleFlagCache
	l2          ModuleFlagCache
	invalidator Invalidator
	config      CacheConfig
	logger      *zap.Logger

	l1Hits   atomic.Int64
	l1Misses atomic.Int64
	l2Hits   atomic.Int64
	l2Misses atomic.Int64
}

// NewTieredModuleFlagCache creates a tiered cache. invalidator may be nil.
func NewTieredModuleFlagCache(l1, l2 ModuleFlagCache, invalidator Invalidator, config CacheConfig, logger *zap.Logger) *TieredModuleFlagCache {
	if config.L1TTL <= 0 {
		config.L1TTL = DefaultCacheConfig().L1TTL
	}
	if config.L2TTL <= 0 {
		config.L2TTL = DefaultCacheConfig().L2TTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredModuleFlagCache{
		l1:          l1,
		l2:          l2,
		invalidator: invalidator,
		config:      config,
		logger:      logger,
	}
}

// StartInvalidationSubscription listens for invalidation messages and drops
// L1 entries accordingly. Call in a goroutine; it blocks until ctx ends.
func (c *TieredModuleFlagCache) StartInvalidationSubscription(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}
	return c.invalidator.Subscribe(ctx, func(entityID uuid.UUID) {
		if err := c.l1.Delete(context.Background(), entityID); err != nil {
			c.logger.Warn("Failed to invalidate L1 entry",
				zap.String("entity_id", entityID.String()),
				zap.Error(err))
		}
	})
}

// Get reads through L1 then L2, repopulating L1 on an L2 hit
func (c *TieredModuleFlagCache) Get(ctx context.Context, entityID uuid.UUID) ([]tenancy.ModuleKey, error) {
	modules, err := c.l1.Get(ctx, entityID)
	if err != nil {
		c.logger.Warn("L1 cache error", zap.Error(err))
	}
	if modules != nil {
		c.l1Hits.Add(1)
		return modules, nil
	}
	c.l1Misses.Add(1)

	modules, err = c.l2.Get(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if modules != nil {
		c.l2Hits.Add(1)
		if err := c.l1.Set(ctx, entityID, modules, c.config.L1TTL); err != nil {
			c.logger.Warn("Failed to populate L1 cache", zap.Error(err))
		}
		return modules, nil
	}
	c.l2Misses.Add(1)

	return nil, nil
}

// Set writes both layers and notifies other instances
func (c *TieredModuleFlagCache) Set(ctx context.Context, entityID uuid.UUID, modules []tenancy.ModuleKey, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.config.L2TTL
	}

	if err := c.l2.Set(ctx, entityID, modules, ttl); err != nil {
		return err
	}
	if err := c.l1.Set(ctx, entityID, modules, c.config.L1TTL); err != nil {
		c.logger.Warn("Failed to set L1 cache", zap.Error(err))
	}
	c.publish(ctx, entityID)

	return nil
}

// Delete removes the entry from both layers and notifies other instances
func (c *TieredModuleFlagCache) Delete(ctx context.Context, entityID uuid.UUID) error {
	if err := c.l2.Delete(ctx, entityID); err != nil {
		return err
	}
	if err := c.l1.Delete(ctx, entityID); err != nil {
		c.logger.Warn("Failed to delete from L1 cache", zap.Error(err))
	}
	c.publish(ctx, entityID)

	return nil
}

func (c *TieredModuleFlagCache) publish(ctx context.Context, entityID uuid.UUID) {
	if c.invalidator == nil {
		return
	}
	if err := c.invalidator.Publish(ctx, entityID); err != nil {
		c.logger.Warn("Failed to publish cache invalidation",
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
	}
}

// Stats reports hit/miss counters per layer
type Stats struct {
	L1Hits   int64
	L1Misses int64
	L2Hits   int64
	L2Misses int64
}

// Stats returns a snapshot of the hit/miss counters
func (c *TieredModuleFlagCache) Stats() Stats {
	return Stats{
		L1Hits:   c.l1Hits.Load(),
		L1Misses: c.l1Misses.Load(),
		L2Hits:   c.l2Hits.Load(),
		L2Misses: c.l2Misses.Load(),
	}
}

// Close releases both layers and the invalidator
func (c *TieredModuleFlagCache) Close() error {
	var lastErr error
	if c.invalidator != nil {
		if err := c.invalidator.Close(); err != nil {
			lastErr = err
		}
	}
	if err := c.l2.Close(); err != nil {
		lastErr = err
	}
	if err := c.l1.Close(); err != nil {
		lastErr = err
	}
	return lastErr
}

var _ ModuleFlagCache = (*TieredModuleFlagCache)(nil)
