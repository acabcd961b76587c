package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/terminal"
)

const (
	idempotencyContextKey = "idempotency_key"
	maxIdempotencyKeyLen  = 255
)

// IdempotencyMiddleware forwards a caller-supplied Idempotency-Key to the
// upstream client. Mutations carrying one become eligible for retries.
func IdempotencyMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(terminal.IdempotencyHeader))
		if key == "" {
			c.Next()
			return
		}

		if len(key) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Idempotency-Key must be at most 255 characters",
			})
			return
		}

		logger.Debug("Idempotency key supplied", zap.String("path", c.Request.URL.Path))
		c.Set(idempotencyContextKey, key)
		c.Request = c.Request.WithContext(terminal.WithIdempotencyKey(c.Request.Context(), key))
		c.Next()
	}
}

// GetIdempotencyKey returns the key supplied with the request, if any
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	key := c.GetString(idempotencyContextKey)
	return key, key != ""
}
