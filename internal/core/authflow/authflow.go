// Package authflow holds the sign-in decision logic: the sign-in gate, token
// claim enrichment, session projection, the post-auth redirect policy and the
// first-link side effect. Every function works over injected lookups so it can
// be exercised without a database or HTTP stack.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/core/domain"
)

// DefaultLandingPath is where users land when no acceptable redirect was requested.
const DefaultLandingPath = "/user"

// UserLookup finds users by id. A missing user is reported as apperrors.ErrNotFound.
type UserLookup interface {
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// AccountLookup reports whether a user has any linked OAuth account.
type AccountLookup interface {
	HasLinkedAccount(ctx context.Context, userID string) (bool, error)
}

// ConfirmationConsumer atomically checks for and deletes a user's two-factor
// confirmation, reporting whether one existed.
type ConfirmationConsumer interface {
	ConsumeTwoFactorConfirmation(ctx context.Context, userID string) (bool, error)
}

// EmailVerifier marks a user's email as verified.
type EmailVerifier interface {
	MarkEmailVerified(ctx context.Context, userID string, at time.Time) error
}

// deniedMessage is deliberately generic so callers cannot tell which gate failed.
const deniedMessage = "Invalid credentials!"

// AllowSignIn is the sign-in gate. Non-credential providers are always allowed.
// Credential sign-ins require a verified email and, when two-factor is enabled,
// consume the user's two-factor confirmation. The confirmation is single use.
func AllowSignIn(ctx context.Context, provider, userID string, users UserLookup, confirmations ConfirmationConsumer) error {
	if provider != domain.ProviderCredentials {
		return nil
	}

	user, err := users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewAuthDeniedError(deniedMessage, err)
		}
		return fmt.Errorf("sign-in gate: find user: %w", err)
	}
	if user == nil || !user.IsVerified() {
		return apperrors.NewAuthDeniedError(deniedMessage, nil)
	}

	if user.IsTwoFactorEnabled {
		consumed, err := confirmations.ConsumeTwoFactorConfirmation(ctx, user.UserID)
		if err != nil {
			return fmt.Errorf("sign-in gate: consume two-factor confirmation: %w", err)
		}
		if !consumed {
			return apperrors.NewAuthDeniedError(deniedMessage, nil)
		}
	}

	return nil
}

// EnrichClaims fills the session claims from the current user record. Claims
// without a subject, or whose user no longer exists, are returned unchanged.
// Running it repeatedly yields the same claims.
func EnrichClaims(ctx context.Context, claims domain.SessionClaims, users UserLookup, accounts AccountLookup) (domain.SessionClaims, error) {
	if claims.Subject == "" {
		return claims, nil
	}

	user, err := users.FindUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return claims, nil
		}
		return claims, fmt.Errorf("enrich claims: find user: %w", err)
	}
	if user == nil {
		return claims, nil
	}

	linked, err := accounts.HasLinkedAccount(ctx, user.UserID)
	if err != nil {
		return claims, fmt.Errorf("enrich claims: linked accounts: %w", err)
	}

	claims.IsOAuth = linked
	claims.Name = user.Name
	claims.Email = user.Email
	claims.Role = user.Role
	claims.IsTwoFactorEnabled = user.IsTwoFactorEnabled
	return claims, nil
}

// ProjectSession maps token claims onto the public session view.
func ProjectSession(claims domain.SessionClaims) domain.Session {
	return domain.Session{
		User: domain.SessionUser{
			ID:                 claims.Subject,
			Name:               claims.Name,
			Email:              claims.Email,
			Role:               claims.Role,
			IsTwoFactorEnabled: claims.IsTwoFactorEnabled,
			IsOAuth:            claims.IsOAuth,
		},
		Expires: claims.ExpiresAt,
	}
}

// ResolveRedirect decides where to send a user after authentication. Relative
// paths are resolved against baseURL, URLs on baseURL pass through unchanged,
// and anything else falls back to the default landing page.
func ResolveRedirect(target, baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")

	// "//host" is protocol-relative and would leave the site.
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return baseURL + target
	}

	if baseURL != "" && strings.HasPrefix(target, baseURL) {
		rest := target[len(baseURL):]
		// https://x.test.evil.com shares the prefix but is another host.
		if rest == "" || strings.ContainsRune("/?#", rune(rest[0])) {
			return target
		}
	}

	return baseURL + DefaultLandingPath
}

// LinkAccount runs when an OAuth account is linked for the first time. The
// provider vouches for the email, so it is marked verified.
func LinkAccount(ctx context.Context, userID string, now time.Time, verifier EmailVerifier) error {
	if err := verifier.MarkEmailVerified(ctx, userID, now); err != nil {
		return fmt.Errorf("link account: mark email verified: %w", err)
	}
	return nil
}
