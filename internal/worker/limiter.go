package worker

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles artifact reads per source directory, so a batch
// spread over several mounts does not hammer any single one.
// A nil *Limiter never waits.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter allowing filesPerSecond reads per directory.
// It returns nil when filesPerSecond is not positive.
func NewLimiter(filesPerSecond float64, burst int) *Limiter {
	if filesPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(filesPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the directory holding path may be read again
func (l *Limiter) Wait(ctx context.Context, path string) error {
	if l == nil {
		return ctx.Err()
	}
	return l.getLimiter(sourceDir(path)).Wait(ctx)
}

// getLimiter returns the rate limiter for a directory
func (l *Limiter) getLimiter(dir string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[dir]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[dir]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[dir] = limiter

	return limiter
}

// sourceDir is the limiter key of an artifact path
func sourceDir(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Dir(path)
}
