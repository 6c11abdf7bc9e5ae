package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/neptunetech/storefront/internal/core/domain"
)

// SessionJWTClaims are the enriched session claims as carried in the JWT.
type SessionJWTClaims struct {
	Name               string `json:"name,omitempty"`
	Email              string `json:"email,omitempty"`
	Role               string `json:"role,omitempty"`
	IsTwoFactorEnabled bool   `json:"isTwoFactorEnabled"`
	IsOAuth            bool   `json:"isOAuth"`
	jwt.RegisteredClaims
}

// GenerateSessionJWT signs the session claims with HS256. claims.ExpiresAt must be set.
func GenerateSessionJWT(claims domain.SessionClaims, secret string, issuer string, now time.Time) (string, error) {
	if claims.ExpiresAt.IsZero() {
		return "", errors.New("session claims have no expiry")
	}
	jwtClaims := SessionJWTClaims{
		Name:               claims.Name,
		Email:              claims.Email,
		Role:               string(claims.Role),
		IsTwoFactorEnabled: claims.IsTwoFactorEnabled,
		IsOAuth:            claims.IsOAuth,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   claims.Subject,
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)
	return token.SignedString([]byte(secret))
}

// ParseSessionJWT parses a session token string, validates its signature and standard claims.
func ParseSessionJWT(tokenString string, secretKey string) (domain.SessionClaims, error) {
	claims := &SessionJWTClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return domain.SessionClaims{}, err // expired, bad signature, malformed, ...
	}
	if !token.Valid {
		return domain.SessionClaims{}, jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" {
		return domain.SessionClaims{}, jwt.ErrTokenRequiredClaimMissing
	}

	out := domain.SessionClaims{
		Subject:            claims.Subject,
		Name:               claims.Name,
		Email:              claims.Email,
		Role:               domain.UserRole(claims.Role),
		IsTwoFactorEnabled: claims.IsTwoFactorEnabled,
		IsOAuth:            claims.IsOAuth,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
