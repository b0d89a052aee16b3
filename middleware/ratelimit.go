package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const maxTrackedClients = 10000

// RateLimiter keeps one token bucket per client IP. It runs ahead of
// authentication, so callers are never known by email here.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	logger   *logrus.Logger
}

func NewRateLimiter(requestsPerSecond, burst int, logger *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		if !rl.getLimiter(key).Allow() {
			rl.logger.WithFields(logrus.Fields{
				"key":    key,
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Warn("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// Cleanup drops all buckets once too many callers are tracked.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.limiters) > maxTrackedClients {
		rl.limiters = make(map[string]*rate.Limiter)
	}
}

// Schedule registers Cleanup on the given cron scheduler.
func (rl *RateLimiter) Schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, rl.Cleanup)
	return err
}
