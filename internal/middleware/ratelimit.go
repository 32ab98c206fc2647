package middleware

import (
	"net/http"

	"nearby/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KeyFunc picks the rate limit bucket for a request.
type KeyFunc func(c *gin.Context) string

func ByClientIP(c *gin.Context) string { return c.ClientIP() }

// ByUser keys on the authenticated user and falls back to the client IP.
func ByUser(c *gin.Context) string {
	if id := GetUserID(c); id != "" {
		return id
	}
	return c.ClientIP()
}

// RateLimit rejects requests once the limiter refuses the key. A limiter
// error lets the request through.
func RateLimit(limiter ratelimit.Limiter, key KeyFunc, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), key(c))
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded", "code": "RATE_LIMITED"})
			return
		}
		c.Next()
	}
}
