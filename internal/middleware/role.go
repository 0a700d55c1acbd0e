package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cutline/internal/domain"
	"cutline/internal/pkg/response"
)

// RequireRole gates a route on the role claim set by Auth.
func RequireRole(required domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if domain.UserRole(role.(string)) != required {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "This action requires the "+string(required)+" role")
			c.Abort()
			return
		}

		c.Next()
	}
}

// OwnerOnly restricts a route to salon owner accounts.
func OwnerOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleOwner)
}
