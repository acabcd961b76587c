package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleListResources handles GET /v1/resources
func HandleListResources(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"resources": catalog.Resources()})
	}
}

// HandleReadResource handles GET /v1/resources/read?uri=terminal://cart
func HandleReadResource(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		uri := c.Query("uri")
		if uri == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "uri query parameter is required"})
			return
		}

		res := catalog.ReadResource(c.Request.Context(), uri)
		c.JSON(statusFor(res), res)
	}
}
