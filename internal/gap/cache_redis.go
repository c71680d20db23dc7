package gap

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"certus/internal/platform/redis"
)

// RedisCache stores serialized analyses in Redis with a TTL. Every error is
// treated as a miss so a degraded cache never blocks reads.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(frameworkID string) string {
	return "gap:analysis:" + frameworkID
}

func (c *RedisCache) Get(ctx context.Context, frameworkID string) (Analysis, bool) {
	raw, err := c.client.Get(ctx, cacheKey(frameworkID)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.Warn("gap cache read failed", "framework_id", frameworkID, "error", err)
		}
		return Analysis{}, false
	}

	var analysis Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		c.logger.Warn("gap cache entry corrupt", "framework_id", frameworkID, "error", err)
		return Analysis{}, false
	}
	return analysis, true
}

func (c *RedisCache) Set(ctx context.Context, analysis Analysis) {
	raw, err := json.Marshal(analysis)
	if err != nil {
		c.logger.Warn("gap cache marshal failed", "framework_id", analysis.FrameworkID, "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(analysis.FrameworkID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("gap cache write failed", "framework_id", analysis.FrameworkID, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, frameworkID string) {
	if err := c.client.Del(ctx, cacheKey(frameworkID)).Err(); err != nil {
		c.logger.Warn("gap cache invalidate failed", "framework_id", frameworkID, "error", err)
	}
}
