package middleware

import (
	"net/http"
	"strings"

	"recipe-finder/internal/core/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// RequireAuth validates the bearer token and stores the account identity on
// the context. Requests without a valid token get 401.
func RequireAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
				"code":  "UNAUTHORIZED",
			})
			return
		}

		user, err := authService.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
				"code":  "UNAUTHORIZED",
			})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserEmail, user.Email)
		c.Next()
	}
}

// OptionalAuth resolves the identity when a token is present but lets
// anonymous requests through. Search and listings personalize results only
// for signed-in users.
func OptionalAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if user, err := authService.VerifyToken(c.Request.Context(), token); err == nil {
				c.Set(ContextUserID, user.ID)
				c.Set(ContextUserEmail, user.Email)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user's ID, 0 for anonymous requests.
func UserID(c *gin.Context) int {
	if id, ok := c.Get(ContextUserID); ok {
		if v, ok := id.(int); ok {
			return v
		}
	}
	return 0
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
