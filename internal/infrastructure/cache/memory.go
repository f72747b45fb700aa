package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// MemoryCache is the in-process Cache used when Redis is not configured.
// Values are stored JSON-encoded so callers get copies, as with Redis.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// GetJSON retrieves and unmarshals a value, ErrMiss when absent
func (c *MemoryCache) GetJSON(_ context.Context, key string, dest any) error {
	val, found := c.cache.Get(key)
	if !found {
		return ErrMiss
	}
	return json.Unmarshal(val.([]byte), dest)
}

// SetJSON stores a value. A zero ttl uses the cache default.
func (c *MemoryCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, data, ttl)
	return nil
}

// MemoryRateLimiter keeps a token bucket per client key
type MemoryRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	now      func() time.Time
}

// NewMemoryRateLimiter creates an in-process rate limiter
func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
}

// CheckRateLimit allows limit requests per window with a burst of limit
func (l *MemoryRateLimiter) CheckRateLimit(_ context.Context, key string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	now := l.now()
	if limit <= 0 || window <= 0 {
		return true, 0, now, nil
	}
	lim := l.limiter(key, limit, window)

	allowed := lim.AllowN(now, 1)
	remaining := max(int64(lim.TokensAt(now)), 0)

	// time until one token is available again
	perToken := time.Duration(float64(window) / float64(limit))
	return allowed, remaining, now.Add(perToken), nil
}

func (l *MemoryRateLimiter) limiter(key string, limit int64, window time.Duration) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[key]; ok {
		return lim
	}
	every := rate.Every(time.Duration(float64(window) / float64(limit)))
	lim := rate.NewLimiter(every, int(limit))
	l.limiters[key] = lim
	return lim
}
