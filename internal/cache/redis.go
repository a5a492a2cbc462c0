package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/podiumlab/podium/internal/domain/model"
	"github.com/podiumlab/podium/pkg/logger"
	"github.com/podiumlab/podium/pkg/metrics"
)

// keyPrefix namespaces bundle keys in a shared Redis.
const keyPrefix = "podium:bundle:"

// Redis is a Cache backed by a Redis server, for deployments where several
// instances should share one bundle cache. Expiry is delegated to Redis
// TTLs. Every backend error degrades to a miss or a no-op: an unavailable
// cache must never block correctness.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewRedis creates a Redis-backed cache talking to addr.
func NewRedis(addr string, ttl time.Duration, log logger.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		log:    log,
	}
}

// Ping verifies connectivity at startup.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *Redis) Close() error {
	return c.client.Close()
}

// Get returns the cached bundle for userID if present and fresh.
func (c *Redis) Get(ctx context.Context, userID string) (model.RatingBundle, bool) {
	data, err := c.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		// redis.Nil is a plain miss; anything else degrades to one.
		if err != redis.Nil {
			c.log.Warn(ctx, "redis get failed; treating as miss",
				logger.String("user_id", userID), logger.Error(err))
		}
		metrics.RecordCacheMiss()
		return model.RatingBundle{}, false
	}

	var bundle model.RatingBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		c.log.Warn(ctx, "redis entry corrupt; treating as miss",
			logger.String("user_id", userID), logger.Error(err))
		metrics.RecordCacheMiss()
		return model.RatingBundle{}, false
	}
	metrics.RecordCacheHit()
	return bundle, true
}

// Set stores bundle for userID with the configured TTL.
func (c *Redis) Set(ctx context.Context, userID string, bundle model.RatingBundle) {
	data, err := json.Marshal(bundle)
	if err != nil {
		c.log.Warn(ctx, "bundle marshal failed; skipping cache write",
			logger.String("user_id", userID), logger.Error(err))
		return
	}
	if err := c.client.Set(ctx, keyPrefix+userID, data, c.ttl).Err(); err != nil {
		c.log.Warn(ctx, "redis set failed; skipping cache write",
			logger.String("user_id", userID), logger.Error(err))
	}
}

// Invalidate evicts userID's entry.
func (c *Redis) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		c.log.Warn(ctx, "redis delete failed",
			logger.String("user_id", userID), logger.Error(err))
		return
	}
	metrics.RecordCacheEviction()
}
