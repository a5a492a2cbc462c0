// Package cache defines the rating-bundle cache contract.
//
// Bundles are idempotent pure functions of the underlying population, so the
// cache only needs eventual consistency within its TTL window: last-write-wins
// on concurrent Set is acceptable, and any backend failure degrades to a miss
// so the caller recomputes. Misses are never remembered (no negative caching).
package cache

import (
	"context"
	"time"

	"github.com/podiumlab/podium/internal/domain/model"
)

// DefaultTTL bounds the staleness window for cached bundles.
const DefaultTTL = 60 * time.Second

// Cache memoizes computed rating bundles per user.
type Cache interface {
	// Get returns the cached bundle for userID, or false on a miss.
	// Entries past their TTL count as misses.
	Get(ctx context.Context, userID string) (model.RatingBundle, bool)

	// Set stores a freshly computed bundle.
	Set(ctx context.Context, userID string, bundle model.RatingBundle)

	// Invalidate evicts a user's entry. Callers that mutate the underlying
	// population (e.g. an approval event) use this to shrink the staleness
	// window; natural TTL expiry alone is still correct.
	Invalidate(ctx context.Context, userID string)
}
