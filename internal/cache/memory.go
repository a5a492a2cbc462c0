package cache

import (
	"context"
	"sync"
	"time"

	"github.com/podiumlab/podium/internal/domain/model"
	"github.com/podiumlab/podium/pkg/metrics"
)

// entry pairs a bundle with its storage time for lazy expiry.
type entry struct {
	bundle   model.RatingBundle
	storedAt time.Time
}

// Memory is the default in-process Cache. Expiry is lazy: an expired entry
// found by Get is removed on the spot; there is no background sweep.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// Option applies a configuration option to the Memory cache.
type Option func(*Memory)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Memory) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Tests use this to step past the TTL
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Memory) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemory creates an in-memory cache with configuration options.
func NewMemory(opts ...Option) *Memory {
	c := &Memory{
		entries: make(map[string]entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached bundle for userID if present and fresh.
func (c *Memory) Get(ctx context.Context, userID string) (model.RatingBundle, bool) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		metrics.RecordCacheMiss()
		return model.RatingBundle{}, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		// Lazy expiry: drop the stale entry and report a miss. The entry is
		// re-checked under the write lock because a concurrent Set may have
		// refreshed it in between.
		c.mu.Lock()
		if cur, still := c.entries[userID]; still && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, userID)
			metrics.RecordCacheEviction()
		}
		c.mu.Unlock()
		metrics.RecordCacheMiss()
		return model.RatingBundle{}, false
	}
	metrics.RecordCacheHit()
	return e.bundle, true
}

// Set stores bundle for userID, overwriting any existing entry.
func (c *Memory) Set(ctx context.Context, userID string, bundle model.RatingBundle) {
	c.mu.Lock()
	c.entries[userID] = entry{bundle: bundle, storedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate evicts userID's entry if present.
func (c *Memory) Invalidate(ctx context.Context, userID string) {
	c.mu.Lock()
	if _, ok := c.entries[userID]; ok {
		delete(c.entries, userID)
		metrics.RecordCacheEviction()
	}
	c.mu.Unlock()
}

// Len returns the current number of cached entries, counting expired ones
// that have not been lazily collected yet.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
