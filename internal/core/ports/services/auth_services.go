package services

import (
	"context"

	"github.com/neptunetech/storefront/internal/core/domain"
	"github.com/neptunetech/storefront/internal/dto"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// CredentialAuthSvc defines the email + password flows.
type CredentialAuthSvc interface {
	// Register creates an unverified user and emails a verification token.
	// A failed send is reported as apperrors.ErrDelivery; the user is kept.
	Register(ctx context.Context, req dto.RegisterRequest) (string, error)

	// VerifyEmail consumes a verification token and marks the email verified.
	VerifyEmail(ctx context.Context, token string) (string, error)

	// RequestPasswordReset emails a password reset token.
	RequestPasswordReset(ctx context.Context, req dto.ResetRequest) (string, error)

	// ResetPassword consumes a password reset token and sets a new password.
	ResetPassword(ctx context.Context, req dto.NewPasswordRequest) (string, error)

	// Login runs the credential sign-in, including the verification and two-factor steps.
	Login(ctx context.Context, req dto.LoginRequest) (*domain.LoginResult, error)
}

// SessionAuthSvc defines the flows that issue or refresh sessions for an already known identity.
type SessionAuthSvc interface {
	// SignInWithOAuth signs in, or signs up, the owner of a provider identity.
	SignInWithOAuth(ctx context.Context, profile domain.OAuthProfile) (*domain.IssuedSession, error)

	// RefreshSession re-enriches and re-signs a session token.
	RefreshSession(ctx context.Context, token string) (*domain.IssuedSession, error)
}

// AuthSvcFacade combines all authentication service interfaces
type AuthSvcFacade interface {
	CredentialAuthSvc
	SessionAuthSvc
}

// TokenSvcFacade issues session tokens and the emailed one-time tokens.
type TokenSvcFacade interface {
	// IssueSession enriches the claims for userID, signs them and projects the session view.
	IssueSession(ctx context.Context, userID string) (*domain.IssuedSession, error)

	// ParseSessionToken validates a session token and returns its claims.
	ParseSessionToken(ctx context.Context, token string) (domain.SessionClaims, error)

	// GenerateVerificationToken replaces the email's verification token. userID is set
	// when the token confirms an email change for an existing user.
	GenerateVerificationToken(ctx context.Context, email string, userID *string) (string, error)

	// GeneratePasswordResetToken replaces the email's password reset token.
	GeneratePasswordResetToken(ctx context.Context, email string) (string, error)

	// GenerateTwoFactorToken replaces the email's two-factor code.
	GenerateTwoFactorToken(ctx context.Context, email string) (string, error)
}

// GoogleOAuthHandlerSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthHandlerSvcFacade interface {
	// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)
	// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
	GetGoogleLoginURL(ctx context.Context, state string) string
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// ValidateGoogleIDToken validates an ID token string from Google and returns its payload.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
	// ProfileFromCode exchanges the code, validates the ID token and extracts the identity.
	ProfileFromCode(ctx context.Context, code string) (*domain.OAuthProfile, error)
}
