package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"phonetracer/internal/config"
	"phonetracer/internal/infrastructure/cache"
	"phonetracer/pkg/logger"
)

// RateLimiter returns middleware that limits requests per client IP per minute
func RateLimiter(limiter cache.RateLimiter, cfg config.RateLimitConfig, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip rate limiting for CORS preflight
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, resetTime, err := limiter.CheckRateLimit(
				r.Context(),
				getClientID(r),
				int64(cfg.RequestsPerMinute),
				time.Minute,
			)
			if err != nil {
				// fail open
				log.Warn().Err(err).Msg("rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				retry := int64(time.Until(resetTime).Seconds())
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientID identifies the client by IP. RealIP has already rewritten
// RemoteAddr from forwarding headers.
func getClientID(r *http.Request) string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return "ip:" + ip
}
