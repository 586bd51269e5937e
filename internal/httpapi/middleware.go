package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/belovebe/taskmatch/internal/auth"
)

const identityKey = "identity"

// RequireAuth verifies the Bearer token and stores the caller's
// identity on the request context. Requests without a valid token get
// a 401.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		identity := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// callerID returns the authenticated user id. Only valid behind
// RequireAuth.
func callerID(c *gin.Context) uint64 {
	identity := c.MustGet(identityKey).(*auth.Identity)
	return identity.UserID
}
