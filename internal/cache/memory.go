package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps entries in process memory with expiry
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns a copy of the cached entry
func (c *MemoryCache) Get(key string) (*Entry, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	entry, ok := val.(Entry)
	if !ok {
		return nil, false
	}
	return &entry, true
}

// Set stores a copy of entry; ttl 0 uses the cache default
func (c *MemoryCache) Set(key string, entry *Entry, ttl time.Duration) error {
	if entry == nil {
		return nil
	}
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, *entry, ttl)
	return nil
}

// Delete removes an entry
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all entries
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}

// Len returns the number of unexpired entries
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
