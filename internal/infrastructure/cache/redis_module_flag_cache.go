package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/fieldops/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisModuleFlagCache is the shared L2 layer
type RedisModuleFlagCache struct {
	client     *redis.Client
	ownsClient bool
	defaultTTL time.Duration
	logger     *zap.Logger
}

// NewRedisModuleFlagCache creates a Redis-backed cache with its own client
func NewRedisModuleFlagCache(cfg config.RedisConfig, defaultTTL time.Duration, logger *zap.Logger) (*RedisModuleFlagCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisModuleFlagCache(client, true, defaultTTL, logger), nil
}

// NewRedisModuleFlagCacheWithClient wraps an existing client. The caller
// retains ownership of the client and is responsible for closing it.
func NewRedisModuleFlagCacheWithClient(client *redis.Client, defaultTTL time.Duration, logger *zap.Logger) *RedisModuleFlagCache {
	return newRedisModuleFlagCache(client, false, defaultTTL, logger)
}

func newRedisModuleFlagCache(client *redis.Client, owns bool, defaultTTL time.Duration, logger *zap.Logger) *RedisModuleFlagCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultCacheConfig().L2TTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisModuleFlagCache{
		client:     client,
		ownsClient: owns,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

func moduleFlagKey(entityID uuid.UUID) string {
	return fmt.Sprintf("module_flags:%s", entityID)
}

// Get retrieves the enabled-module set for an entity, or nil on miss
func (c *RedisModuleFlagCache) Get(ctx context.Context, entityID uuid.UUID) ([]tenancy.ModuleKey, error) {
	data, err := c.client.Get(ctx, moduleFlagKey(entityID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Failed to get module flags from cache",
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get module flags from cache: %w", err)
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		// Corrupted entry; drop it and treat as a miss
		_ = c.client.Del(ctx, moduleFlagKey(entityID))
		return nil, fmt.Errorf("failed to unmarshal module flags: %w", err)
	}

	modules := make([]tenancy.ModuleKey, 0, len(keys))
	for _, k := range keys {
		if mk := tenancy.ModuleKey(k); mk.IsValid() {
			modules = append(modules, mk)
		}
	}
	return modules, nil
}

// Set stores the enabled-module set for an entity
func (c *RedisModuleFlagCache) Set(ctx context.Context, entityID uuid.UUID, modules []tenancy.ModuleKey, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	keys := make([]string, 0, len(modules))
	for _, m := range modules {
		keys = append(keys, string(m))
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to marshal module flags: %w", err)
	}

	if err := c.client.Set(ctx, moduleFlagKey(entityID), data, ttl).Err(); err != nil {
		c.logger.Error("Failed to set module flags in cache",
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to set module flags in cache: %w", err)
	}

	return nil
}

// Delete removes an entity's entry
func (c *RedisModuleFlagCache) Delete(ctx context.Context, entityID uuid.UUID) error {
	if err := c.client.Del(ctx, moduleFlagKey(entityID)).Err(); err != nil {
		c.logger.Error("Failed to delete module flags from cache",
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to delete module flags from cache: %w", err)
	}
	return nil
}

// Close releases the Redis client when this cache owns it
func (c *RedisModuleFlagCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ ModuleFlagCache = (*RedisModuleFlagCache)(nil)
