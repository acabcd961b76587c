package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleListPrompts handles GET /v1/prompts
func HandleListPrompts(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"prompts": catalog.Prompts()})
	}
}

// HandleGetPrompt handles POST /v1/prompts/:name
func HandleGetPrompt(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var args map[string]string
		if err := bindArguments(c, &args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid request body",
				"details": err.Error(),
			})
			return
		}

		res := catalog.GetPrompt(c.Request.Context(), c.Param("name"), args)
		c.JSON(statusFor(res), res)
	}
}
