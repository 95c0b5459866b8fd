package cache

import (
	"context"
	"time"

	"github.com/fieldops/backend/internal/domain/access"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CachedModuleFlagSource answers module-enabled questions for the permission
// gate, reading through the cache and falling back to the entity settings
// store on a miss. A failure to populate the cache is logged but never fails
// the gate decision; the settings store remains the source of truth.
type CachedModuleFlagSource struct {
	cache    ModuleFlagCache
	entities tenancy.EntityRepository
	ttl      time.Duration
	logger   *zap.Logger
}

// NewCachedModuleFlagSource creates a flag source over the given cache and
// entity repository.
func NewCachedModuleFlagSource(cache ModuleFlagCache, entities tenancy.EntityRepository, ttl time.Duration, logger *zap.Logger) *CachedModuleFlagSource {
	if ttl <= 0 {
		ttl = DefaultCacheConfig().L2TTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedModuleFlagSource{
		cache:    cache,
		entities: entities,
		ttl:      ttl,
		logger:   logger,
	}
}

// ModuleEnabled implements access.ModuleFlagSource
func (s *CachedModuleFlagSource) ModuleEnabled(ctx context.Context, entityID uuid.UUID, key tenancy.ModuleKey) (bool, error) {
	modules, err := s.cache.Get(ctx, entityID)
	if err != nil {
		// A degraded cache must not take the gate down with it
		s.logger.Warn("Module flag cache read failed, falling back to store",
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
		modules = nil
	}

	if modules == nil {
		entity, err := s.entities.FindByID(ctx, entityID)
		if err != nil {
			return false, err
		}
		modules = entity.Settings.EnabledModules()

		if err := s.cache.Set(ctx, entityID, modules, s.ttl); err != nil {
			s.logger.Warn("Failed to populate module flag cache",
				zap.String("entity_id", entityID.String()),
				zap.Error(err))
		}
	}

	for _, m := range modules {
		if m == key {
			return true, nil
		}
	}
	return false, nil
}

// Invalidate drops the cached entry for an entity. Settings services call
// this after every module toggle.
func (s *CachedModuleFlagSource) Invalidate(ctx context.Context, entityID uuid.UUID) error {
	return s.cache.Delete(ctx, entityID)
}

var _ access.ModuleFlagSource = (*CachedModuleFlagSource)(nil)
