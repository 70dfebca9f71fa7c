package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/connectly/backend/internal/models"
)

// Middleware validates the bearer token and stores user_id and
// user_role in the gin context for downstream handlers.
func Middleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_bearer_token"})
			c.Abort()
			return
		}

		user, err := svc.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_role", string(user.Role))
		c.Next()
	}
}

// RequireAdmin gates a route on the admin role. Must run after an auth
// middleware that set user_role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.GetString("user_role"))
		if !role.CanListUsers() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin_access_required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
