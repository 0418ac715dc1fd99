package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/mo"

	"sorabackend/metrics"
)

// MemoryCache is a process-local Cache. Expired entries are hidden on read and
// removed by the eviction timer.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   clockwork.Clock
	metrics *metrics.Metrics
}

type memoryEntry struct {
	value Value
	// zero means no expiry
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func NewMemoryCache(clock clockwork.Clock, m *metrics.Metrics) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		clock:   clock,
		metrics: m,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (mo.Option[Value], error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || entry.expired(c.clock.Now()) {
		c.metrics.CacheRequest(Namespace(key), false)
		return mo.None[Value](), nil
	}

	c.metrics.CacheRequest(Namespace(key), true)
	return mo.Some(entry.value), nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value Value, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = c.newEntry(value, ttl)
	return nil
}

func (c *MemoryCache) AddOrUpdate(ctx context.Context, key string, initial Value, update UpdateFunc, ttl time.Duration) (Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := initial
	if entry, ok := c.entries[key]; ok && !entry.expired(c.clock.Now()) {
		updated, err := update(entry.value)
		if err != nil {
			return nil, err
		}
		next = updated
	}

	c.entries[key] = c.newEntry(next, ttl)
	return next, nil
}

func (c *MemoryCache) Remove(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Contains(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return ok && !entry.expired(c.clock.Now()), nil
}

// Size returns the number of stored entries, including expired ones not yet evicted.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictExpired removes all expired entries and returns how many were removed.
func (c *MemoryCache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// StartEvictionTimer periodically evicts expired entries until the returned stop function is called.
func (c *MemoryCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				if evicted := c.EvictExpired(); evicted > 0 {
					slog.Debug("🧹 Evicted expired cache entries", "count", evicted, "remaining", c.Size())
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func (c *MemoryCache) newEntry(value Value, ttl time.Duration) memoryEntry {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.clock.Now().Add(ttl)
	}
	return entry
}

var _ Cache = (*MemoryCache)(nil)
