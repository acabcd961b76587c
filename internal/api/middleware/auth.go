package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/internal/operations"
	"github.com/jafarshop/shopgateway/internal/repository"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

const (
	gatewayKeyContextKey = "gateway_key"

	// APIKeyHeader is accepted as an alternative to a bearer token
	APIKeyHeader = "X-API-Key"
)

// AuthMiddleware authenticates gateway clients against stored API keys and
// attributes their invocations to the matching key.
func AuthMiddleware(keys repository.GatewayKeyRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := extractAPIKey(c.Request)
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		key, err := keys.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			if errors.KindOf(err) == errors.KindUnauthorized {
				logger.Warn("Rejected gateway request",
					zap.String("path", c.Request.URL.Path),
					zap.String("client_ip", c.ClientIP()),
				)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			logger.Error("Failed to authenticate gateway key", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(gatewayKeyContextKey, key)
		c.Request = c.Request.WithContext(operations.WithGatewayKeyID(c.Request.Context(), key.ID))
		c.Next()
	}
}

// GetGatewayKeyFromContext returns the authenticated key, if any
func GetGatewayKeyFromContext(c *gin.Context) (*domain.GatewayKey, bool) {
	value, exists := c.Get(gatewayKeyContextKey)
	if !exists {
		return nil, false
	}
	key, ok := value.(*domain.GatewayKey)
	return key, ok
}

func extractAPIKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, found := strings.Cut(auth, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get(APIKeyHeader))
}
