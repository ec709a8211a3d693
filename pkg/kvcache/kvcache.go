// Package kvcache provides an in-process key-value cache with per-entry
// TTL, prefix invalidation and hit/miss accounting. It is a pure
// performance layer: entries hold derived read results, never the source
// of truth.
package kvcache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time // zero means never
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// Cache is safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	data   map[string]entry
	hits   uint64
	misses uint64
	now    func() time.Time
}

func New() *Cache {
	return &Cache{data: make(map[string]entry), now: time.Now}
}

// Get returns the value stored under key. An expired entry counts as a
// miss and is purged as a side effect of the lookup.
func (c *Cache) Get(key string) (any, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if ok && !e.expired(now) {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.value, true
	}

	c.mu.Lock()
	c.misses++
	if ok {
		// reread under the write lock, Set may have raced the purge
		if e, ok := c.data[key]; ok && e.expired(c.now()) {
			delete(c.data, key)
		}
	}
	c.mu.Unlock()
	return nil, false
}

// Set stores value under key, overwriting any prior entry. A ttl <= 0
// means the entry never expires on its own.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.data[key] = entry{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// DeleteByPrefix removes every entry whose key starts with prefix.
func (c *Cache) DeleteByPrefix(prefix string) {
	c.mu.Lock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	clear(c.data)
	c.mu.Unlock()
}

// Stats returns the monotonically increasing hit/miss counters and the
// current entry count. Counters are never reset.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.data)}
}
