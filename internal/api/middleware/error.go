package middleware

import (
	"log"
	"net/http"

	"runway-forecast/internal/api/models"

	"github.com/gin-gonic/gin"
)

// ErrorHandler recovers from panics and answers with an INTERNAL_ERROR body.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("ErrorHandler: panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		message := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			message = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: message,
			},
		})
	})
}
