package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

type moduleFlagEntry struct {
	modules   []tenancy.ModuleKey
	expiresAt time.Time
}

func (e moduleFlagEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryModuleFlagCache is the in-process L1 layer. Entries expire by TTL
// and are evicted lazily on read plus by a background sweep.
type InMemoryModuleFlagCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]moduleFlagEntry

	defaultTTL time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewInMemoryModuleFlagCache creates a new in-memory cache with a background
// cleanup goroutine.
func NewInMemoryModuleFlagCache(defaultTTL time.Duration) *InMemoryModuleFlagCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultCacheConfig().L1TTL
	}

	c := &InMemoryModuleFlagCache{
		entries:    make(map[uuid.UUID]moduleFlagEntry),
		defaultTTL: defaultTTL,
		stop:       make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

func (c *InMemoryModuleFlagCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *InMemoryModuleFlagCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.entries {
		if entry.expired() {
			delete(c.entries, id)
		}
	}
}

// Get retrieves the enabled-module set for an entity, or nil on miss
func (c *InMemoryModuleFlagCache) Get(_ context.Context, entityID uuid.UUID) ([]tenancy.ModuleKey, error) {
	c.mu.RLock()
	entry, ok := c.entries[entityID]
	c.mu.RUnlock()

	if !ok || entry.expired() {
		return nil, nil
	}

	out := make([]tenancy.ModuleKey, len(entry.modules))
	copy(out, entry.modules)
	return out, nil
}

// Set stores the enabled-module set for an entity
func (c *InMemoryModuleFlagCache) Set(_ context.Context, entityID uuid.UUID, modules []tenancy.ModuleKey, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	stored := make([]tenancy.ModuleKey, len(modules))
	copy(stored, modules)

	c.mu.Lock()
	c.entries[entityID] = moduleFlagEntry{modules: stored, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()

	return nil
}

// Delete removes an entity's entry
func (c *InMemoryModuleFlagCache) Delete(_ context.Context, entityID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, entityID)
	c.mu.Unlock()
	return nil
}

// InvalidateAll drops every entry
func (c *InMemoryModuleFlagCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[uuid.UUID]moduleFlagEntry)
	c.mu.Unlock()
}

// Len returns the number of live entries
func (c *InMemoryModuleFlagCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine
func (c *InMemoryModuleFlagCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

var _ ModuleFlagCache = (*InMemoryModuleFlagCache)(nil)
