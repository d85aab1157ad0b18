// Package middleware provides HTTP middleware for the speedrun API.
package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// maxBuckets is the maximum number of tracked client IPs. The least recently
// seen client is evicted first.
const maxBuckets = 100_000

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a RateLimiter allowing ratePerSec requests per second
// per IP with bursts of up to burst requests.
func NewRateLimiter(ratePerSec, burst int) (*RateLimiter, error) {
	limiters, err := lru.New[string, *rate.Limiter](maxBuckets)
	if err != nil {
		return nil, fmt.Errorf("creating rate limiter table: %w", err)
	}

	return &RateLimiter{
		limiters: limiters,
		limit:    rate.Limit(ratePerSec),
		burst:    burst,
	}, nil
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters.Get(ip); ok {
		return l
	}

	l := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters.Add(ip, l)

	return l
}

// Handler returns Gin middleware that applies rate limiting per client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	retryAfter := strconv.Itoa(max(1, int(1/float64(rl.limit))))

	return func(c *gin.Context) {
		// c.ClientIP() ignores forwarding headers because the router trusts no proxies.
		if !rl.limiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", retryAfter)
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")

			return
		}

		c.Next()
	}
}
