package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"document-backend/internal/shared/auth"
	"document-backend/internal/shared/server/respond"
)

const (
	userIDKey   = "userId"
	usernameKey = "userName"
	isAdminKey  = "isAdmin"
)

// Auth validates bearer tokens and stores the caller identity in context.
func Auth(signer *auth.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := signer.Verify(token, auth.TypeAccess)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(usernameKey, claims.Username)
		c.Set(isAdminKey, claims.Admin)
		c.Next()
	}
}

// RequireAdmin rejects callers whose token does not carry the admin flag.
// Administrative paths (restore, hard delete) sit behind it.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdminFromContext(c) {
			respond.Error(c, http.StatusForbidden, "forbidden", "administrative privileges required", nil)
			return
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UsernameFromContext fetches the username set by the auth middleware.
func UsernameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(usernameKey)
	if name, ok := val.(string); ok {
		return name
	}
	return ""
}

// IsAdminFromContext reports whether the caller holds the admin claim.
func IsAdminFromContext(c *gin.Context) bool {
	if c == nil {
		return false
	}
	val, _ := c.Get(isAdminKey)
	admin, ok := val.(bool)
	return ok && admin
}
