package content

import (
	"sync"
	"time"
)

const (
	defaultCacheTTL     = 5 * time.Minute
	defaultCacheMaxSize = 50
)

// cacheEntry holds a cached value along with the timestamp it was stored.
type cacheEntry struct {
	value    any
	storedAt time.Time
}

// docCache is a bounded TTL cache keyed by context key. Eviction is by
// insertion order: when the bound is exceeded the oldest-inserted surviving
// entry goes first. Overwriting an existing key keeps its original insertion
// position, so a refreshed entry does not jump the eviction queue. Expired
// entries are treated as absent and purged on read.
//
// This is deliberately not an LRU: access recency must not influence which
// entry is evicted.
type docCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	order   []string
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

func newDocCache(ttl time.Duration, maxSize int) *docCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if maxSize <= 0 {
		maxSize = defaultCacheMaxSize
	}
	return &docCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the live value for key, purging it first when expired.
func (c *docCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.removeLocked(key)
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key, evicting the oldest insert beyond the bound.
func (c *docCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
	for len(c.entries) > c.maxSize {
		c.removeLocked(c.order[0])
	}
}

// Clear drops every entry, returning how many were removed.
func (c *docCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	size := len(c.entries)
	c.entries = make(map[string]cacheEntry)
	c.order = c.order[:0]
	return size
}

// ClearExpired drops entries past the TTL, returning how many were removed.
func (c *docCache) ClearExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	cleared := 0
	for _, key := range append([]string(nil), c.order...) {
		if entry, ok := c.entries[key]; ok && now.Sub(entry.storedAt) > c.ttl {
			c.removeLocked(key)
			cleared++
		}
	}
	return cleared
}

// Stats reports cache size, keys in insertion order, and the storage times of
// the oldest and newest entries.
type Stats struct {
	Size   int        `json:"size"`
	Keys   []string   `json:"keys"`
	Oldest *time.Time `json:"oldestEntry,omitempty"`
	Newest *time.Time `json:"newestEntry,omitempty"`
}

func (c *docCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := Stats{
		Size: len(c.entries),
		Keys: append([]string(nil), c.order...),
	}
	for _, entry := range c.entries {
		storedAt := entry.storedAt
		if stats.Oldest == nil || storedAt.Before(*stats.Oldest) {
			t := storedAt
			stats.Oldest = &t
		}
		if stats.Newest == nil || storedAt.After(*stats.Newest) {
			t := storedAt
			stats.Newest = &t
		}
	}
	return stats
}

func (c *docCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
}
