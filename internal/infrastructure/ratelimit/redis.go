package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/limiter"
)

const defaultKeyPrefix = "ratelimit:"

// RedisLimiter is a fixed window counter shared by every instance that
// points at the same Redis.
type RedisLimiter struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisLimiter(client *redis.Client, keyPrefix string) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisLimiter{client: client, keyPrefix: keyPrefix}
}

// Allow increments the window counter; the first hit of a window sets its TTL.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, period time.Duration) (bool, error) {
	redisKey := l.keyPrefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, period).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(limit), nil
}

var _ limiter.Limiter = (*RedisLimiter)(nil)
