package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// Idle client buckets older than this are dropped on the next sweep.
const bucketTTL = 10 * time.Minute

// bucket is a token bucket for one client.
type bucket struct {
	mu       sync.Mutex
	tokens   float64
	last     time.Time
	lastSeen time.Time
}

func (b *bucket) take(cfg RateLimitConfig, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.last).Seconds() * cfg.RequestsPerSecond
	if max := float64(cfg.BurstSize); b.tokens > max {
		b.tokens = max
	}
	b.last = now
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (b *bucket) retryAfter(cfg RateLimitConfig) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cfg.RequestsPerSecond <= 0 {
		return 1
	}
	return int((1-b.tokens)/cfg.RequestsPerSecond) + 1
}

// clientStore maps client keys to buckets and sweeps idle entries so the
// map does not grow with every address that ever hit the API.
type clientStore struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	cfg       RateLimitConfig
	lastSweep time.Time
}

func (s *clientStore) get(key string, now time.Time) *bucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > bucketTTL {
		for k, b := range s.buckets {
			b.mu.Lock()
			idle := now.Sub(b.lastSeen) > bucketTTL
			b.mu.Unlock()
			if idle {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(s.cfg.BurstSize), last: now, lastSeen: now}
		s.buckets[key] = b
	}
	return b
}

// RateLimit throttles requests per client IP with a token bucket. Exhausted
// clients get 429 with a Retry-After hint.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := &clientStore{
		buckets:   make(map[string]*bucket),
		cfg:       cfg,
		lastSweep: time.Now(),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			b := store.get(c.RealIP(), now)

			c.Response().Header().Set("X-RateLimit-Limit",
				strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64))

			if !b.take(cfg, now) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(b.retryAfter(cfg)))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
