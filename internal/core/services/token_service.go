package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/neptunetech/storefront/internal/core/authflow"
	"github.com/neptunetech/storefront/internal/core/domain"
	portsrepo "github.com/neptunetech/storefront/internal/core/ports/repositories"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/platform/config"
	"github.com/neptunetech/storefront/internal/utils"
)

const (
	VerificationTokenTTL  = time.Hour
	PasswordResetTokenTTL = time.Hour
	TwoFactorTokenTTL     = 5 * time.Minute

	twoFactorCodeMin = 100000
	twoFactorCodeMax = 999999
)

// tokenService signs session JWTs and issues the emailed one-time tokens.
type tokenService struct {
	BaseService
	cfg      *config.Config
	users    portsrepo.UserRepositoryFacade
	accounts portsrepo.AccountRepositoryFacade
	tokens   portsrepo.EmailTokenRepository
}

// TokenServiceOption configures optional dependencies of the token service
type TokenServiceOption func(*tokenService)

// WithTokenClock sets the clock used for expiries.
func WithTokenClock(clock func() time.Time) TokenServiceOption {
	return func(s *tokenService) {
		s.Clock = clock
	}
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(
	cfg *config.Config,
	users portsrepo.UserRepositoryFacade,
	accounts portsrepo.AccountRepositoryFacade,
	tokens portsrepo.EmailTokenRepository,
	options ...TokenServiceOption,
) portssvc.TokenSvcFacade {
	s := &tokenService{
		cfg:      cfg,
		users:    users,
		accounts: accounts,
		tokens:   tokens,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *tokenService) IssueSession(ctx context.Context, userID string) (*domain.IssuedSession, error) {
	now := s.Now()
	claims := domain.SessionClaims{
		Subject:   userID,
		ExpiresAt: now.Add(s.cfg.JWTExpiryDuration),
	}

	claims, err := authflow.EnrichClaims(ctx, claims, s.users, s.accounts)
	if err != nil {
		s.LogError(ctx, err, "Failed to enrich session claims", slog.String("user_id", userID))
		return nil, err
	}

	token, err := utils.GenerateSessionJWT(claims, s.cfg.JWTSecret, s.cfg.JWTIssuer, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign session token", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &domain.IssuedSession{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		Session:   authflow.ProjectSession(claims),
	}, nil
}

func (s *tokenService) ParseSessionToken(ctx context.Context, token string) (domain.SessionClaims, error) {
	return utils.ParseSessionJWT(token, s.cfg.JWTSecret)
}

func (s *tokenService) GenerateVerificationToken(ctx context.Context, email string, userID *string) (string, error) {
	return s.issue(ctx, domain.TokenKindVerification, email, userID, uuid.NewString(), VerificationTokenTTL)
}

func (s *tokenService) GeneratePasswordResetToken(ctx context.Context, email string) (string, error) {
	return s.issue(ctx, domain.TokenKindPasswordReset, email, nil, uuid.NewString(), PasswordResetTokenTTL)
}

func (s *tokenService) GenerateTwoFactorToken(ctx context.Context, email string) (string, error) {
	code, err := utils.GenerateNumericCode(twoFactorCodeMin, twoFactorCodeMax)
	if err != nil {
		return "", err
	}
	return s.issue(ctx, domain.TokenKindTwoFactor, email, nil, code, TwoFactorTokenTTL)
}

// issue stores the hash of value, replacing the email's previous token of the
// same kind, and returns value for delivery.
func (s *tokenService) issue(ctx context.Context, kind domain.TokenKind, email string, userID *string, value string, ttl time.Duration) (string, error) {
	token := domain.EmailToken{
		ID:        uuid.NewString(),
		Kind:      kind,
		Email:     email,
		Token:     utils.HashToken(value),
		UserID:    userID,
		ExpiresAt: s.Now().Add(ttl),
	}
	if err := s.tokens.SaveToken(ctx, token); err != nil {
		s.LogError(ctx, err, "Failed to save email token", slog.String("kind", string(kind)))
		return "", fmt.Errorf("failed to save %s token: %w", kind, err)
	}
	s.LogDebug(ctx, "Issued email token", slog.String("kind", string(kind)), slog.Time("expires_at", token.ExpiresAt))
	return value, nil
}
