package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/neptunetech/storefront/internal/core/domain"
)

const (
	userIDKey = contextKey("userID")
	claimsKey = contextKey("sessionClaims")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(userIDKey)); exists {
		userID, ok := v.(string)
		return userID, ok && userID != ""
	}
	// check in the request context as well
	if v, ok := c.Request.Context().Value(userIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// GetClaimsFromContext retrieves the session claims stored by AuthMiddleware.
func GetClaimsFromContext(c *gin.Context) (domain.SessionClaims, bool) {
	v, exists := c.Get(string(claimsKey))
	if !exists {
		return domain.SessionClaims{}, false
	}
	claims, ok := v.(domain.SessionClaims)
	return claims, ok
}
