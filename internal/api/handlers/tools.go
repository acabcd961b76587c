package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleListTools handles GET /v1/tools
func HandleListTools(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tools": catalog.Operations()})
	}
}

// HandleInvokeTool handles POST /v1/tools/:name
func HandleInvokeTool(catalog Catalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")

		var args map[string]any
		if err := bindArguments(c, &args); err != nil {
			logger.Debug("Invalid tool request body", zap.String("tool", name), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid request body",
				"details": err.Error(),
			})
			return
		}

		res := catalog.Invoke(c.Request.Context(), name, args)
		c.JSON(statusFor(res), res)
	}
}
