package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/workledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultStalenessWindow bounds how old a full snapshot may be before a
// read-everything path refreshes it.
const DefaultStalenessWindow = 5 * time.Minute

// Loader fetches the complete entity set from the backing repository.
// The backing store is small local business data, so a miss reloads
// everything rather than running a point query: a slightly more expensive
// miss buys a cache with no partial-invalidation logic and cheap GetAll
// and GetMany paths.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Stats is a point-in-time snapshot of the cache counters
type Stats struct {
	Hits        int64
	Misses      int64
	Refreshes   int64
	Size        int
	LastRefresh time.Time
}

// EntityCache is a read-through cache mapping identity to entity. The map
// swap on refresh happens under an exclusive lock so concurrent refreshes
// and reads are race-free; the last completed refresh wins.
type EntityCache[T any] struct {
	name      string
	loader    Loader[T]
	staleness time.Duration
	logger    *zap.Logger

	mu          sync.RWMutex
	entries     map[int64]T
	lastRefresh time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	refreshes atomic.Int64
}

// NewEntityCache creates a cache over a full-set loader
func NewEntityCache[T any](name string, loader Loader[T], staleness time.Duration, logger *zap.Logger) *EntityCache[T] {
	if staleness <= 0 {
		staleness = DefaultStalenessWindow
	}
	return &EntityCache[T]{
		name:      name,
		loader:    loader,
		staleness: staleness,
		logger:    logger.Named("cache." + name),
		entries:   make(map[int64]T),
	}
}

// Get returns the entity with the given identity. A miss triggers one full
// refresh before concluding ErrNotFound, so a genuinely absent id costs one
// reload.
func (c *EntityCache[T]) Get(ctx context.Context, id int64) (*T, error) {
	c.mu.RLock()
	entity, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return &entity, nil
	}

	c.misses.Add(1)
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	entity, ok = c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &entity, nil
}

// GetMany resolves a batch of identities with at most one refresh for the
// whole batch. Identities that remain unresolved after the refresh are
// silently dropped from the result.
func (c *EntityCache[T]) GetMany(ctx context.Context, ids []int64) ([]T, error) {
	c.mu.RLock()
	missing := 0
	for _, id := range ids {
		if _, ok := c.entries[id]; !ok {
			missing++
		}
	}
	c.mu.RUnlock()

	if missing > 0 {
		c.misses.Add(int64(missing))
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
	} else if len(ids) > 0 {
		c.hits.Add(int64(len(ids)))
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	resolved := make([]T, 0, len(ids))
	for _, id := range ids {
		if entity, ok := c.entries[id]; ok {
			resolved = append(resolved, entity)
		}
	}
	return resolved, nil
}

// GetAll returns every cached entity, refreshing first when the snapshot is
// empty or older than the staleness window.
func (c *EntityCache[T]) GetAll(ctx context.Context) ([]T, error) {
	c.mu.RLock()
	stale := len(c.entries) == 0 || time.Since(c.lastRefresh) > c.staleness
	c.mu.RUnlock()

	if stale {
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	all := make([]T, 0, len(c.entries))
	for _, entity := range c.entries {
		all = append(all, entity)
	}
	return all, nil
}

// Refresh fetches the complete entity set and atomically replaces the map
func (c *EntityCache[T]) Refresh(ctx context.Context) error {
	entities, err := c.loader(ctx)
	if err != nil {
		c.logger.Error("refresh failed", zap.Error(err))
		return err
	}

	entries := make(map[int64]T, len(entities))
	for _, entity := range entities {
		if ident, ok := any(&entity).(shared.Identifiable); ok {
			entries[ident.EntityID()] = entity
		}
	}

	c.mu.Lock()
	c.entries = entries
	c.lastRefresh = time.Now()
	c.mu.Unlock()

	c.refreshes.Add(1)
	c.logger.Debug("refreshed", zap.Int("entities", len(entries)))
	return nil
}

// Invalidate drops the snapshot so the next read refreshes. Wired to the
// change-notification bus.
func (c *EntityCache[T]) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[int64]T)
	c.lastRefresh = time.Time{}
	c.mu.Unlock()
}

// Stats returns the running counters
func (c *EntityCache[T]) Stats() Stats {
	c.mu.RLock()
	size := len(c.entries)
	last := c.lastRefresh
	c.mu.RUnlock()
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Refreshes:   c.refreshes.Load(),
		Size:        size,
		LastRefresh: last,
	}
}
