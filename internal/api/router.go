package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/api/handlers"
	"github.com/jafarshop/shopgateway/internal/api/middleware"
	"github.com/jafarshop/shopgateway/internal/config"
	"github.com/jafarshop/shopgateway/internal/repository"
)

// NewRouter creates and configures the Gin router. With nil repos the
// gateway runs without client authentication or the admin routes.
func NewRouter(cfg *config.Config, catalog handlers.Catalog, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	if repos != nil {
		v1.Use(middleware.AuthMiddleware(repos.GatewayKey, logger))
	}
	v1.Use(middleware.IdempotencyMiddleware(logger))
	if budget := cfg.Terminal.CallBudget(); budget > 0 {
		v1.Use(requestDeadline(budget))
	}
	{
		v1.GET("/tools", handlers.HandleListTools(catalog))
		v1.POST("/tools/:name", handlers.HandleInvokeTool(catalog, logger))

		v1.GET("/resources", handlers.HandleListResources(catalog))
		v1.GET("/resources/read", handlers.HandleReadResource(catalog))

		v1.GET("/prompts", handlers.HandleListPrompts(catalog))
		v1.POST("/prompts/:name", handlers.HandleGetPrompt(catalog))
	}

	if repos != nil {
		adminRoutes := v1.Group("/admin")
		{
			adminRoutes.GET("/invocations", handlers.HandleListInvocations(repos, logger))
			adminRoutes.DELETE("/keys/:id", handlers.HandleRevokeGatewayKey(repos, logger))
		}
	}

	return router
}

// requestDeadline bounds the request context so upstream calls end with a
// timeout result before the server's write deadline
func requestDeadline(budget time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), budget)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
