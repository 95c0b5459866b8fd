// Package cache implements the tiered module-flag cache: a small in-process
// layer in front of a shared Redis layer, with pub/sub invalidation so a
// settings change on one instance reaches the others inside the L1 TTL.
package cache

import (
	"context"
	"time"

	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// ModuleFlagCache stores the enabled-module set per entity. A nil result with
// a nil error is a cache miss.
type ModuleFlagCache interface {
	Get(ctx context.Context, entityID uuid.UUID) ([]tenancy.ModuleKey, error)
	Set(ctx context.Context, entityID uuid.UUID, modules []tenancy.ModuleKey, ttl time.Duration) error
	Delete(ctx context.Context, entityID uuid.UUID) error
	Close() error
}

// CacheConfig holds TTLs for the two cache layers
type CacheConfig struct {
	L1TTL time.Duration
	L2TTL time.Duration
}

// DefaultCacheConfig returns the default TTLs. The L1 TTL bounds how long a
// disabled module can still appear enabled on an instance that missed the
// invalidation message.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		L1TTL: 30 * time.Second,
		L2TTL: 5 * time.Minute,
	}
}
