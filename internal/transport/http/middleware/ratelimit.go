package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"health-diagnosis/internal/transport/http/response"
)

const MsgTooManyRequests = "too many analyze requests, please wait a moment"

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects clients that exceed the limiter's budget with the JSON
// envelope. Limiter outages let requests through.
func RateLimit(limiter Limiter, logger *slog.Logger) gin.HandlerFunc {
	return RateLimitWith(limiter, logger, func(c *gin.Context) {
		response.Error(c, http.StatusTooManyRequests, response.CodeTooManyRequests, MsgTooManyRequests)
	})
}

// RateLimitWith is RateLimit with a caller supplied rejection, used by routes
// that answer with HTML.
func RateLimitWith(limiter Limiter, logger *slog.Logger, reject gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", "err", err)
			c.Next()
			return
		}
		if !allowed {
			reject(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
