package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a fixed-window counter per client key. The counter
// lives in Redis so limits hold across server instances and restarts.
type RateLimiter struct {
	client *redis.Client
	window time.Duration
	limit  int
}

// NewRateLimiter builds a limiter allowing limit requests per window.
func NewRateLimiter(client *redis.Client, window time.Duration, limit int) *RateLimiter {
	return &RateLimiter{
		client: client,
		window: window,
		limit:  limit,
	}
}

// Allow increments the counter for key and reports whether the request is
// within the limit. The window TTL is set only when the counter is created,
// so the window is fixed rather than sliding.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	pipe := l.client.TxPipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("incrementing rate limit counter: %w", err)
	}

	return incrCmd.Val() <= int64(l.limit), nil
}

// Remaining returns how many requests are left in the current window.
func (l *RateLimiter) Remaining(ctx context.Context, key string) (int, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.client.Get(ctx, redisKey).Int64()
	if err != nil {
		if err == redis.Nil {
			return l.limit, nil
		}
		return 0, fmt.Errorf("reading rate limit counter: %w", err)
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
