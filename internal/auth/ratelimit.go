package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles repeated failed logins for one email.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type RedisLoginLimiter struct {
	rdb         redis.Cmdable
	maxAttempts int64
	window      time.Duration
}

// NewRedisLoginLimiter returns nil when rdb is nil so callers can skip throttling.
func NewRedisLoginLimiter(rdb redis.Cmdable, maxAttempts int, window time.Duration) *RedisLoginLimiter {
	if rdb == nil {
		return nil
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisLoginLimiter{rdb: rdb, maxAttempts: int64(maxAttempts), window: window}
}

func loginKey(email string) string {
	return fmt.Sprintf("rate_limit:login:%s", email)
}

func (l *RedisLoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	n, err := l.rdb.Get(ctx, loginKey(email)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read login attempts from redis: %w", err)
	}
	return n < l.maxAttempts, nil
}

// RecordFailure counts a failed attempt. The window starts at the first failure.
func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, email string) error {
	key := loginKey(email)
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record login attempt in redis: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set login window in redis: %w", err)
		}
	}
	return nil
}

func (l *RedisLoginLimiter) Reset(ctx context.Context, email string) error {
	return l.rdb.Del(ctx, loginKey(email)).Err()
}
