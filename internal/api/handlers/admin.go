package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/api/middleware"
	"github.com/jafarshop/shopgateway/internal/repository"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

// HandleListInvocations handles GET /v1/admin/invocations
func HandleListInvocations(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := middleware.GetGatewayKeyFromContext(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit < 1 || limit > 500 {
			limit = 50
		}

		invocations, err := repos.Invocation.ListRecent(c.Request.Context(), limit)
		if err != nil {
			logger.Error("Failed to list invocations", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]gin.H, len(invocations))
		for i, inv := range invocations {
			resp := gin.H{
				"id":          inv.ID.String(),
				"operation":   inv.Operation,
				"kind":        inv.Kind,
				"is_error":    inv.IsError,
				"duration_ms": inv.DurationMs,
				"created_at":  inv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			}
			if inv.ErrorKind != "" {
				resp["error_kind"] = inv.ErrorKind
			}
			if inv.GatewayKeyID != nil {
				resp["gateway_key_id"] = inv.GatewayKeyID.String()
			}
			responses[i] = resp
		}

		c.JSON(http.StatusOK, gin.H{
			"invocations": responses,
			"limit":       limit,
		})
	}
}

// HandleRevokeGatewayKey handles DELETE /v1/admin/keys/:id
func HandleRevokeGatewayKey(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := middleware.GetGatewayKeyFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		keyID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key id"})
			return
		}

		if err := repos.GatewayKey.Deactivate(c.Request.Context(), keyID); err != nil {
			if errors.KindOf(err) == errors.KindNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			logger.Error("Failed to revoke gateway key", zap.String("key_id", keyID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		logger.Info("Gateway key revoked",
			zap.String("key_id", keyID.String()),
			zap.String("revoked_by", caller.ID.String()),
		)
		c.Status(http.StatusNoContent)
	}
}
