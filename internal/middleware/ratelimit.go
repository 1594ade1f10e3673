// ratelimit.go implements per-client rate limiting using a token bucket algorithm.
//
// How token bucket works:
// - Each client IP gets a "bucket" with N tokens (N = requests per hour)
// - Each request consumes 1 token
// - Tokens refill at a steady rate (N tokens per hour)
// - If the bucket is empty, the request is rejected with 429 Too Many Requests
//
// Every analysis costs a paid (or quota-limited) LLM call, so the limiter
// sits in front of POST /analyze only. A limit of 0 turns it off.
package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/report-analyzer-api/internal/apperror"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/models"
)

// RateLimiter tracks request rates per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	perHour   int
	now       func() time.Time
	stop      chan struct{}
	closeOnce sync.Once
}

// bucket tracks the token state for a single client.
type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// allowResult contains the result of a rate limit check,
// including header information for the response.
type allowResult struct {
	allowed   bool
	remaining float64
	limit     float64
}

// NewRateLimiter creates a limiter allowing perHour requests per client IP.
// Call Stop to end the background cleanup goroutine.
func NewRateLimiter(perHour int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		perHour: perHour,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	if rl.Enabled() {
		go rl.cleanup(10 * time.Minute)
	}
	return rl
}

// Enabled reports whether requests are limited at all.
func (rl *RateLimiter) Enabled() bool {
	return rl.perHour > 0
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.closeOnce.Do(func() { close(rl.stop) })
}

// RateLimit returns Gin middleware that enforces the per-client limit.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Enabled() {
			c.Next()
			return
		}

		result := rl.allow(c.ClientIP())
		c.Header("X-RateLimit-Limit", formatFloat(result.limit))

		if !result.allowed {
			c.Header("X-RateLimit-Remaining", "0")
			appErr := apperror.RateLimited("Rate limit exceeded. Try again later.")
			c.AbortWithStatusJSON(appErr.StatusCode(), models.Failed(appErr.Message))
			return
		}

		c.Header("X-RateLimit-Remaining", formatFloat(result.remaining))
		c.Next()
	}
}

// allow checks if a request should be allowed, consuming a token if so.
// Checking and reading the bucket happen under one lock.
func (rl *RateLimiter) allow(clientID string) allowResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limit := float64(rl.perHour)
	now := rl.now()

	b, exists := rl.buckets[clientID]
	if !exists {
		b = &bucket{tokens: limit, lastRefill: now}
		rl.buckets[clientID] = b
	}

	// Refill tokens based on elapsed time
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * limit / 3600.0
	if b.tokens > limit {
		b.tokens = limit
	}
	b.lastRefill = now

	if b.tokens < 1.0 {
		return allowResult{allowed: false, remaining: 0, limit: limit}
	}

	b.tokens--
	return allowResult{allowed: true, remaining: b.tokens, limit: limit}
}

// cleanup periodically removes stale buckets to prevent memory leaks.
func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictStale()
		}
	}
}

// evictStale drops buckets untouched for over an hour; they would be full
// again anyway.
func (rl *RateLimiter) evictStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for id, b := range rl.buckets {
		if now.Sub(b.lastRefill) > time.Hour {
			delete(rl.buckets, id)
		}
	}
}

// formatFloat converts a float to a string for headers.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.0f", f)
}
