/**
 * @description
 * Fixed-window rate limiting shared by every mutating endpoint. RateLimiter is
 * an injected abstraction so the process-local counter map can be swapped for
 * the Redis-backed implementation in multi-instance deployments without
 * touching call sites.
 */

package app

import (
	"context"
	"sync"
	"time"
)

// RateLimitResult reports the outcome of one rate-limit check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

// RateLimiter enforces a fixed-window request ceiling per key.
type RateLimiter interface {
	Check(ctx context.Context, key string, maxRequests int, window time.Duration) (RateLimitResult, error)
}

type rateLimitEntry struct {
	count     int
	resetTime time.Time
}

// MemoryRateLimiter keeps one counter per key in process memory. Stale entries
// persist until overwritten by a later request for the same key; acceptable
// for single-process, non-durable use.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     func() time.Time
}

// NewMemoryRateLimiter returns an empty in-memory limiter.
func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		entries: make(map[string]*rateLimitEntry),
		now:     time.Now,
	}
}

// Check applies the fixed-window algorithm: the first request for a key, or
// any request after the stored reset time has passed, opens a fresh window
// with count 1. Within a window the counter increments until maxRequests is
// reached, after which calls are rejected until the window elapses.
func (l *MemoryRateLimiter) Check(ctx context.Context, key string, maxRequests int, window time.Duration) (RateLimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetTime) {
		resetTime := now.Add(window)
		l.entries[key] = &rateLimitEntry{count: 1, resetTime: resetTime}
		return RateLimitResult{Allowed: true, Remaining: maxRequests - 1, ResetTime: resetTime}, nil
	}

	if entry.count >= maxRequests {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetTime: entry.resetTime}, nil
	}

	entry.count++
	return RateLimitResult{Allowed: true, Remaining: maxRequests - entry.count, ResetTime: entry.resetTime}, nil
}
