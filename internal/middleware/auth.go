package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/neptunetech/storefront/internal/core/domain"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
)

// SessionTokenFromRequest returns the session token from the session cookie,
// falling back to a Bearer Authorization header.
func SessionTokenFromRequest(c *gin.Context, cookieName string) (string, error) {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("Authorization required")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", errors.New("Authorization header format must be Bearer {token}")
	}
	return parts[1], nil
}

// AuthMiddleware creates a Gin middleware handler that validates session tokens.
func AuthMiddleware(tokenService portssvc.TokenSvcFacade, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		tokenString, err := SessionTokenFromRequest(c, cookieName)
		if err != nil {
			logger.Warn("Session token missing", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := tokenService.ParseSessionToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		setSession(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the session when the request carries a valid
// token and otherwise lets the request through anonymously.
func OptionalAuthMiddleware(tokenService portssvc.TokenSvcFacade, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := SessionTokenFromRequest(c, cookieName)
		if err == nil {
			claims, err := tokenService.ParseSessionToken(c.Request.Context(), tokenString)
			if err == nil {
				setSession(c, claims)
			} else {
				GetLoggerFromCtx(c.Request.Context()).Debug("Ignoring invalid session token", slog.String("error", err.Error()))
			}
		}
		c.Next()
	}
}

// setSession stores the user ID, claims and an enriched logger on the request.
func setSession(c *gin.Context, claims domain.SessionClaims) {
	enrichedLogger := GetLoggerFromCtx(c.Request.Context()).With(slog.String("user_id", claims.Subject))
	ctx := context.WithValue(c.Request.Context(), userIDKey, claims.Subject)
	ctx = WithLogger(ctx, enrichedLogger)
	c.Request = c.Request.WithContext(ctx)

	c.Set(string(userIDKey), claims.Subject)
	c.Set(string(claimsKey), claims)
}

// RequireRole aborts with 403 unless the session has the given role. A request
// without a session is forbidden too. It must run after AuthMiddleware or
// OptionalAuthMiddleware.
func RequireRole(role domain.UserRole, forbiddenMessage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaimsFromContext(c)
		if !ok || claims.Role != role {
			GetLoggerFromCtx(c.Request.Context()).Warn("Role check failed",
				slog.String("required_role", string(role)),
				slog.String("role", string(claims.Role)))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": forbiddenMessage})
			return
		}
		c.Next()
	}
}
