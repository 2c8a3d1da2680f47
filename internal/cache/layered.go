package cache

import (
	"errors"
	"time"
)

// LayeredCache checks memory before disk and writes through to both
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a memory cache in front of a disk cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, cleanupInterval(memoryTTL)),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get checks memory first, then disk, promoting disk hits
func (c *LayeredCache) Get(key string) (*Entry, bool) {
	if entry, found := c.memory.Get(key); found {
		return entry, true
	}

	if entry, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, entry, 0)
		return entry, true
	}

	return nil, false
}

// Set stores the entry in both layers
func (c *LayeredCache) Set(key string, entry *Entry, ttl time.Duration) error {
	if err := c.memory.Set(key, entry, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, entry, ttl)
}

// Delete removes the entry from both layers
func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.memory.Delete(key), c.disk.Delete(key))
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}
