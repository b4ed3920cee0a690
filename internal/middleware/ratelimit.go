package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP. Idle buckets expire from the cache.
type RateLimiter struct {
	visitors *cache.Cache
	limit    rate.Limit
	burst    int
	message  string
}

// NewRateLimiter allows n requests per window for each IP.
func NewRateLimiter(n int, window time.Duration, message string) *RateLimiter {
	if n < 1 {
		n = 1
	}
	idle := 2 * window
	if idle < 10*time.Minute {
		idle = 10 * time.Minute
	}
	return &RateLimiter{
		visitors: cache.New(idle, idle),
		limit:    rate.Every(window / time.Duration(n)),
		burst:    n,
		message:  message,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	if v, ok := rl.visitors.Get(ip); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	// Add fails when a concurrent request stored one first; use that one.
	if err := rl.visitors.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		if v, ok := rl.visitors.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getLimiter(c.ClientIP())
		r := limiter.Reserve()
		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, Envelope(c, rl.message))
			return
		}
		c.Next()
	}
}
