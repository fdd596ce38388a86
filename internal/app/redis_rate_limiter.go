package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisRateLimiter implements distributed fixed-window rate limiting using
// Redis. The INCR/PEXPIRE script keeps the read-modify-write atomic across
// instances, which the in-memory limiter cannot offer.
type RedisRateLimiter struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisRateLimiter returns a limiter that namespaces its keys under prefix.
func NewRedisRateLimiter(client redis.UniversalClient, prefix string) *RedisRateLimiter {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "facterra:rate_limit"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	return &RedisRateLimiter{
		client: client,
		prefix: trimmedPrefix,
		now:    time.Now,
	}
}

func (r *RedisRateLimiter) Check(ctx context.Context, key string, maxRequests int, window time.Duration) (RateLimitResult, error) {
	if r == nil || r.client == nil || maxRequests <= 0 || window <= 0 {
		return RateLimitResult{Allowed: true, Remaining: maxRequests}, nil
	}

	normalizedKey := strings.TrimSpace(key)
	if normalizedKey == "" {
		return RateLimitResult{Allowed: true, Remaining: maxRequests}, nil
	}

	windowMs := window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	redisKey := fmt.Sprintf("%s:%s", r.prefix, normalizedKey)
	rawResult, err := rateLimitScript.Run(ctx, r.client, []string{redisKey}, windowMs).Result()
	if err != nil {
		return RateLimitResult{}, err
	}

	values, ok := rawResult.([]interface{})
	if !ok || len(values) != 2 {
		return RateLimitResult{}, fmt.Errorf("unexpected redis limiter response shape: %T", rawResult)
	}

	count, ok := values[0].(int64)
	if !ok {
		return RateLimitResult{}, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}

	ttlMs, ok := values[1].(int64)
	if !ok {
		return RateLimitResult{}, fmt.Errorf("unexpected redis limiter ttl type: %T", values[1])
	}
	if ttlMs < 0 {
		ttlMs = windowMs
	}

	resetTime := r.now().Add(time.Duration(ttlMs) * time.Millisecond)
	remaining := maxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitResult{
		Allowed:   int(count) <= maxRequests,
		Remaining: remaining,
		ResetTime: resetTime,
	}, nil
}
