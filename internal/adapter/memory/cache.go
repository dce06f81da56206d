// Package memory implements the cache port as an in-process map with lazy
// TTL checks. Staleness is only detected on read: an expired entry reports a
// miss but stays in memory until the next Set overwrites it. This mirrors the
// behavior callers of the pass listing endpoint have always observed.
package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

// Cache is a mutex-guarded map of key to timestamped value.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time // for testing
}

// New creates an empty memory cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get retrieves a value from the cache. An entry whose TTL has elapsed is
// reported as a miss but not removed.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().Sub(e.storedAt) >= e.ttl {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores a value with the given TTL, unconditionally overwriting any
// prior entry for the key.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, storedAt: c.now(), ttl: ttl}
	return nil
}

// Delete removes a value from the cache.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Len returns the number of entries held, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
