package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardlight/cardlight/internal/metrics"
)

// RateLimiter bounds how often a key (client IP) may hit the track endpoint.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

type redisRateLimiter struct {
	client   *redis.Client
	limit    int64
	window   time.Duration
	disabled bool
}

// NewRedisRateLimiter creates a sliding-window limiter backed by Redis.
// When disabled, every request is allowed and Redis is never contacted.
func NewRedisRateLimiter(redisURL string, limit int, window time.Duration, disabled bool) (RateLimiter, error) {
	if disabled {
		return &redisRateLimiter{disabled: true}, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &redisRateLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
	}, nil
}

// Allow implements sliding-window rate limiting with an atomic Lua script.
func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.disabled {
		return true, nil
	}

	now := time.Now().UnixNano()
	windowStart := now - r.window.Nanoseconds()
	// Key TTL must cover the whole window or the count resets early.
	ttlSeconds := int64(r.window / time.Second)
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	script := `
		local key = KEYS[1]
		local now = tonumber(ARGV[1])
		local window_start = tonumber(ARGV[2])
		local limit = tonumber(ARGV[3])
		local ttl = tonumber(ARGV[4])

		redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

		local current = redis.call('ZCARD', key)

		if current < limit then
			redis.call('ZADD', key, now, now)
			redis.call('EXPIRE', key, ttl)
			return 1
		else
			return 0
		end
	`

	result, err := r.client.Eval(ctx, script, []string{"ratelimit:" + key}, now, windowStart, r.limit, ttlSeconds).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed := result == 1
	if !allowed {
		metrics.RateLimitHits.WithLabelValues(key).Inc()
	}

	return allowed, nil
}

func (r *redisRateLimiter) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
