package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatcore-service/internal/auth"
)

// AuthMiddleware resolves the session credential and stores the identity in
// the request context.
func AuthMiddleware(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authenticator.VerifyRequest(c.Request.Context(), c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  http.StatusUnauthorized,
				"message": "Unauthorized",
				"error":   err.Error(),
			})
			return
		}

		c.Set("userID", identity.UserID)
		c.Set("username", identity.Username)
		c.Next()
	}
}
