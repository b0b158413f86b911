package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures the rate limiter
type RateLimiterConfig struct {
	// RequestsPerSecond is the rate of token refill
	RequestsPerSecond float64

	// BurstSize is the maximum number of requests allowed in a burst
	BurstSize int

	// IdleTTL is how long an unused key is kept before eviction
	IdleTTL time.Duration

	// KeyFunc extracts the rate limit key from the request
	// Default: client IP address
	KeyFunc func(r *http.Request) string
}

// DefaultRateLimiterConfig returns sensible defaults
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		IdleTTL:           10 * time.Minute,
		KeyFunc:           GetClientIP,
	}
}

// StrictRateLimiterConfig returns stricter limits for endpoints that call
// external services (CEP lookup, user store writes)
func StrictRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstSize:         5,
		IdleTTL:           10 * time.Minute,
		KeyFunc:           GetClientIP,
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per key and evicts idle keys.
type RateLimiter struct {
	config RateLimiterConfig
	limit  rate.Limit

	mu    sync.Mutex
	byKey map[string]*limiterEntry
	hits  uint64
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = GetClientIP
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	if config.BurstSize <= 0 {
		config.BurstSize = 1
	}

	return &RateLimiter{
		config: config,
		limit:  rate.Limit(config.RequestsPerSecond),
		byKey:  make(map[string]*limiterEntry),
		now:    time.Now,
	}
}

// Allow checks if a request for key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.byKey[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.config.BurstSize)}
		rl.byKey[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	rl.hits++
	if rl.hits%512 == 0 {
		cutoff := now.Add(-rl.config.IdleTTL)
		for k, v := range rl.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(rl.byKey, k)
			}
		}
	}

	return allowed
}

// Middleware returns an HTTP middleware that applies rate limiting
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.config.KeyFunc(r)) {
			w.Header().Set("Retry-After", "1")
			respondTooManyRequests(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit creates a rate limiting middleware with the given config
func RateLimit(config RateLimiterConfig) func(http.Handler) http.Handler {
	return NewRateLimiter(config).Middleware
}

// GetClientIP returns the client address recorded by WithClientIP, or the
// connection's peer address when the middleware did not run.
func GetClientIP(r *http.Request) string {
	if ip := GetClientIPFromContext(r.Context()); ip != "" {
		return ip
	}
	return remoteIP(r)
}
