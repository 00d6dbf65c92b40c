package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ModeratorRole is the role name required for moderator-only routes
const ModeratorRole = "moderator"

// RequireRole aborts with 403 unless the authenticated user holds
// the given role. Must run after JWTAuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetJWTRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient permissions",
				},
			})
			return
		}
		c.Next()
	}
}

// RequireModerator restricts a route to moderator accounts
func RequireModerator() gin.HandlerFunc {
	return RequireRole(ModeratorRole)
}

// IsModerator reports whether the authenticated user is a moderator
func IsModerator(c *gin.Context) bool {
	return GetJWTRole(c) == ModeratorRole
}
