// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a lightweight, in-memory, token-bucket rate limiter
// with per-client buckets and opportunistic garbage collection. It is meant
// for edge-level abuse control in a single-process deployment; horizontally
// scaled setups should use a distributed limiter instead.
//
// Rejections are emitted as the standard error envelope with HTTP 429 so
// clients see one consistent error shape across the whole API.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/faultgate/faultgate/internal/respond"
)

// rateLimitedCode is the envelope code for limiter rejections. Rate limiting
// is an edge concern, not part of the fault taxonomy, so the code is owned
// here.
const rateLimitedCode = "too_many_requests"

// ClientKeyFunc selects the identity used to key a rate-limit bucket. It must
// return a stable string per client (e.g. "ip:203.0.113.7").
type ClientKeyFunc func(*gin.Context) string

// KeyByClientIP keys buckets by the client IP address.
func KeyByClientIP() ClientKeyFunc {
	return func(c *gin.Context) string { return "ip:" + c.ClientIP() }
}

// bucket pairs a limiter with its last-seen time for idle eviction.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter, safe for concurrent use.
// Buckets are created on demand; idle buckets are evicted after a TTL during
// periodic sweeps to keep memory bounded.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn ClientKeyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	ttl     time.Duration
	lookups uint64
}

// NewRateLimiter constructs a limiter replenishing rps tokens per second with
// the given burst size (values <= 0 are coerced to 1).
func NewRateLimiter(rps float64, burst int, keyFn ClientKeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
		ttl:     10 * time.Minute,
	}
}

// take returns the limiter for key, creating it if absent. Every ~5000
// lookups it sweeps idle buckets; the sweep runs before the fetch so a stale
// bucket for the current key is evicted rather than refreshed.
func (rl *RateLimiter) take(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= 5000 {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.ttl {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		return b.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets[key] = &bucket{limiter: lim, lastSeen: now}
	return lim
}

// Handler returns a Gin middleware enforcing the limit. Rejected requests
// receive 429 with the standard envelope and a Retry-After hint; they do not
// flow through the fault interceptor.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.take(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, respond.ErrorBody{
			RequestID: RequestIDFrom(c),
			Code:      rateLimitedCode,
			Message:   "rate limit exceeded",
		})
	}
}
