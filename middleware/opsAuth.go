package middleware

import (
	"net/http"
	"strings"

	"vltava/utils"

	"github.com/gin-gonic/gin"
)

// OpsAuthMiddleware guards the operational read API. It expects a bearer
// token issued by the ops token endpoint.
func OpsAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		if err := utils.ValidateOpsToken(tokenString); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized ops access"})
			return
		}

		c.Set("isOps", true)
		c.Next()
	}
}
