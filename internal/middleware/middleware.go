package middleware

import (
	"net/http"
	"strings"

	"taskman/internal/config"
	"taskman/internal/ratelimit"
	"taskman/internal/token"
	"taskman/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	UserKey  = "user"
	EmailKey = "email"
)

// AuthMiddleware requires a valid bearer token. A missing header, a
// malformed token, a bad signature and an expired token all produce the
// same 401 body so a caller learns nothing about which check failed.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		auth := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if auth == "" || !strings.HasPrefix(auth, prefix) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			logger.Debug(ctx, "Missing or invalid Authorization header")
			c.Abort()
			return
		}
		secret := config.Get().JWTSecret
		if secret == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server misconfiguration"})
			c.Abort()
			return
		}
		claims, err := token.Parse(strings.TrimSpace(auth[len(prefix):]), []byte(secret))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			logger.Debug(ctx, "JWT parse failed", "error", err)
			c.Abort()
			return
		}
		c.Set(UserKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

// RateLimit rejects requests over the limiter's budget with a 429 carrying
// the retry hint in minutes. Keyed by client IP. Skipped entirely when
// SKIP_RATE_LIMIT is set (local development and tests).
func RateLimit(limiter ratelimit.Limiter, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.Get().SkipRateLimit {
			c.Next()
			return
		}
		ok, retryAfter := limiter.Allow(c.Request.Context(), c.ClientIP())
		if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":    false,
				"message":    message,
				"retryAfter": ratelimit.RetryAfterMinutes(retryAfter),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
