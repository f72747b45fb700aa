package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is absent or expired
var ErrMiss = errors.New("cache miss")

// Cache is the JSON cache used for trace metadata
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RateLimiter counts requests per client
type RateLimiter interface {
	// CheckRateLimit returns (allowed, remaining, resetTime, error)
	CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, time.Time, error)
}

// Cache key constants
const (
	KeyTracePrefix     = "trace:"
	KeyRateLimitPrefix = "rate_limit:"
)

// TraceKey is the cache key of the resolved metadata for an E.164 number
func TraceKey(e164 string) string {
	return KeyTracePrefix + e164
}
