package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter kept in redis, shared by every
// process serving the app.
type RateLimiter struct {
	client *redisv9.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(client *redisv9.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow counts one hit for key in the current window and reports whether the
// key is still under the limit.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.windowKey(key, l.now())

	var incr *redisv9.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis rate limit failed: %w", err)
	}
	return incr.Val() <= int64(l.limit), nil
}

func (l *RateLimiter) windowKey(key string, at time.Time) string {
	return fmt.Sprintf("ratelimit:analyze:%s:%d", key, at.UnixNano()/int64(l.window))
}
