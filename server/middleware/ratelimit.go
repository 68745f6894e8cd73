package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/diagramkit/errors"
	"github.com/kbukum/diagramkit/resilience"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	Limiter *resilience.KeyedRateLimiter
	// KeyFunc extracts the bucket key. Defaults to the client IP.
	KeyFunc func(*gin.Context) string
	// OnLimit is called for every rejected request.
	OnLimit func(key string)
}

// RateLimit rejects requests over the per-key token bucket with 429 and a
// Retry-After header. The health endpoint is never limited.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	return func(c *gin.Context) {
		if isHealthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}
		key := cfg.KeyFunc(c)
		if !cfg.Limiter.Allow(key) {
			if cfg.OnLimit != nil {
				cfg.OnLimit(key)
			}
			wait := cfg.Limiter.RetryAfter(key)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			appErr := apperrors.RateLimited()
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}
