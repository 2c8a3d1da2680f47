// Package cache keeps rendered reports keyed by artifact content so
// re-analysing an unchanged .book file skips parsing and normalization.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/charprofile/internal/model"
)

// Entry is one cached rendering
type Entry struct {
	Report string       `json:"report"`
	Total  int          `json:"total"`
	Issues model.Issues `json:"issues"`
}

// Cache defines the interface for report caches
type Cache interface {
	Get(key string) (*Entry, bool)
	Set(key string, entry *Entry, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from the artifact bytes and a fingerprint of
// every setting that changes the rendered output.
func Key(input []byte, fingerprint string) string {
	h := sha256.New()
	h.Write(input)
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	return "v1-" + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by cfg: memory only when no directory
// is configured, memory over disk otherwise.
func New(cfg model.CacheConfig) Cache {
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, cleanupInterval(cfg.MemoryTTL))
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 10 * time.Minute
	}
	return ttl
}
