package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipRateLimiter hands out one token-bucket limiter per client IP. Stale
// entries are dropped after an idle period so the map does not grow without
// bound.
type ipRateLimiter struct {
	limiters sync.Map
	limit    rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

func newIPRateLimiter(perMinute int) *ipRateLimiter {
	rl := &ipRateLimiter{
		limit: rate.Limit(float64(perMinute) / 60.0),
		burst: perMinute,
	}
	go rl.cleanup()
	return rl
}

func (rl *ipRateLimiter) allow(ip string) bool {
	value, _ := rl.limiters.LoadOrStore(ip, &limiterEntry{
		limiter: rate.NewLimiter(rl.limit, rl.burst),
	})
	entry := value.(*limiterEntry)

	entry.mu.Lock()
	entry.lastSeen = time.Now()
	entry.mu.Unlock()

	return entry.limiter.Allow()
}

func (rl *ipRateLimiter) cleanup() {
	for range time.Tick(5 * time.Minute) {
		cutoff := time.Now().Add(-10 * time.Minute)
		rl.limiters.Range(func(key, value any) bool {
			entry := value.(*limiterEntry)
			entry.mu.Lock()
			stale := entry.lastSeen.Before(cutoff)
			entry.mu.Unlock()
			if stale {
				rl.limiters.Delete(key)
			}
			return true
		})
	}
}

// RateLimit throttles requests per client IP. A non-positive perMinute
// disables the middleware.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	rl := newIPRateLimiter(perMinute)
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"detail": "Rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
