package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// AuthContextKey is the gin context key holding the caller identity.
	AuthContextKey = "user_id"

	// UserIDHeader carries the caller identity. Identity is a passthrough
	// scoping mechanism, not authentication.
	UserIDHeader = "X-User-ID"
)

// Identity reads the caller identity header into the request context.
// Requests without the header proceed anonymously.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(UserIDHeader); userID != "" {
			c.Set(AuthContextKey, userID)
		}
		c.Next()
	}
}

// RequireIdentity rejects requests that carry no identity header. Used on
// routes that scope results to an owner.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(UserIDHeader) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header required"})
			c.Abort()
			return
		}

		c.Set(AuthContextKey, c.GetHeader(UserIDHeader))
		c.Next()
	}
}

// GetUserID returns the caller identity from the request context.
func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(AuthContextKey)
	if !exists {
		return "", false
	}

	userID, ok := value.(string)
	return userID, ok && userID != ""
}
