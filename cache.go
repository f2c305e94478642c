package musclemap

import (
	"sync"
	"time"
)

// CacheEntry holds a validated response payload and its expiry. Entries
// are replaced wholesale, never mutated in place.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// Cache stores validated response payloads keyed by request cache key.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) (*CacheEntry, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	Clear()
}

// InMemoryCache is an unbounded in-process Cache. Expired entries are
// evicted lazily on lookup; there is no background sweep and no size
// limit, which suits the client-process lifetime this cache is built for.
type InMemoryCache struct {
	mu    sync.Mutex
	store map[string]*CacheEntry
}

// NewInMemoryCache creates an empty in-memory cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{store: make(map[string]*CacheEntry)}
}

// Get returns the live entry for key. It returns false both when the key
// was never set and when the stored entry has expired; an expired entry is
// removed as a side effect of the lookup.
func (c *InMemoryCache) Get(key string) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.store[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		delete(c.store, key)
		return nil, false
	}
	return entry, true
}

// Set stores value under key, unconditionally overwriting any existing
// entry.
func (c *InMemoryCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &CacheEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Delete removes the entry for key, if any.
func (c *InMemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.store, key)
}

// Clear removes all entries.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry)
}

// Len returns the number of stored entries, including any that have
// expired but not yet been evicted.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.store)
}
