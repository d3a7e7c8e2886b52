package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/tutoring-service/internal/services"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// AuthMiddleware resolves the bearer token to a principal and stores it on the context.
func AuthMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing bearer token",
				Code:    CodeAuthentication,
			})
			return
		}

		principal, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
				Code:    CodeAuthentication,
			})
			return
		}

		c.Set(principalKey, principal)
		c.Set("user_id", principal.UserID)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), c.GetString("request_id")))
		c.Next()
	}
}
