package delivery

import (
	"net/http"
	"strings"

	"gemini-task-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token before anything else runs.
// Every failure gets the same 401 body.
func AuthMiddleware(verifier usecase.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := verifier.Verify(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("userID", identity.UserID)
		c.Set("identity", identity)
		c.Next()
	}
}

// bearerToken returns the token of a "Bearer <token>" header, or ""
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
