package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/core/authflow"
	"github.com/neptunetech/storefront/internal/core/domain"
	"github.com/neptunetech/storefront/internal/core/ports/gateways"
	portsrepo "github.com/neptunetech/storefront/internal/core/ports/repositories"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/dto"
	"github.com/neptunetech/storefront/internal/utils"
	"github.com/neptunetech/storefront/internal/validation"
)

const (
	msgConfirmationSent  = "Confirmation email sent!"
	msgEmailInUse        = "Email already in use!"
	msgEmailNotExist     = "Email does not exist!"
	msgInvalidCredential = "Invalid credentials!"
	msgTokenNotExist     = "Token does not exist!"
	msgTokenExpired      = "Token has expired!"
	msgInvalidCode       = "Invalid code!"
	msgCodeExpired       = "Code expired!"
	msgNotLinked         = "OAuthAccountNotLinked"
	msgOAuthUnverified   = "OAuthEmailNotVerified"
)

type authService struct {
	BaseService
	users     portsrepo.UserRepositoryFacade
	accounts  portsrepo.AccountRepositoryFacade
	tokens    portsrepo.EmailTokenRepository
	twoFactor portsrepo.TwoFactorConfirmationRepository
	tokenSvc  portssvc.TokenSvcFacade
	mailer    gateways.Mailer
}

// AuthServiceOption configures optional dependencies of the auth service
type AuthServiceOption func(*authService)

// WithAuthClock sets the clock used for expiry checks and timestamps.
func WithAuthClock(clock func() time.Time) AuthServiceOption {
	return func(s *authService) {
		s.Clock = clock
	}
}

func NewAuthService(
	repos portsrepo.RepositoryProvider,
	tokenSvc portssvc.TokenSvcFacade,
	mailer gateways.Mailer,
	options ...AuthServiceOption,
) portssvc.AuthSvcFacade {
	s := &authService{
		users:     repos.UserRepo,
		accounts:  repos.AccountRepo,
		tokens:    repos.TokenRepo,
		twoFactor: repos.TwoFactorRepo,
		tokenSvc:  tokenSvc,
		mailer:    mailer,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// findUserByEmail returns nil without an error when no user has the email.
func (s *authService) findUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (string, error) {
	if err := validation.Struct(req); err != nil {
		return "", err
	}

	existing, err := s.findUserByEmail(ctx, req.Email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", apperrors.NewDuplicateEmailError(msgEmailInUse)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: &hashed,
		Role:         domain.RoleUser,
		Timestamps:   domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return "", apperrors.NewDuplicateEmailError(msgEmailInUse)
		}
		s.LogError(ctx, err, "Failed to save user")
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID))

	if err := s.sendVerification(ctx, user.Email, nil); err != nil {
		return "", err
	}
	return msgConfirmationSent, nil
}

func (s *authService) sendVerification(ctx context.Context, email string, userID *string) error {
	token, err := s.tokenSvc.GenerateVerificationToken(ctx, email, userID)
	if err != nil {
		return err
	}
	if err := s.mailer.SendVerificationEmail(ctx, email, token); err != nil {
		s.LogError(ctx, err, "Failed to send verification email")
		return apperrors.NewDeliveryError("Failed to send verification email", err)
	}
	return nil
}

// consumableToken looks up an emailed token and rejects unknown or expired ones.
func (s *authService) consumableToken(ctx context.Context, kind domain.TokenKind, value, expiredMsg string) (*domain.EmailToken, error) {
	if value == "" {
		return nil, apperrors.NewBadRequestError("Missing token!")
	}
	token, err := s.tokens.FindTokenByHash(ctx, kind, utils.HashToken(value))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError(msgTokenNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s token: %w", kind, err)
	}
	if token.IsExpired(s.Now()) {
		return nil, apperrors.NewBadRequestError(expiredMsg)
	}
	return token, nil
}

func (s *authService) deleteToken(ctx context.Context, token *domain.EmailToken) {
	if err := s.tokens.DeleteToken(ctx, token.ID); err != nil {
		s.LogError(ctx, err, "Failed to delete consumed token", slog.String("kind", string(token.Kind)))
	}
}

func (s *authService) VerifyEmail(ctx context.Context, value string) (string, error) {
	token, err := s.consumableToken(ctx, domain.TokenKindVerification, value, msgTokenExpired)
	if err != nil {
		return "", err
	}

	var user *domain.User
	if token.UserID != nil {
		user, err = s.users.FindUserByID(ctx, *token.UserID)
		if errors.Is(err, apperrors.ErrNotFound) {
			err, user = nil, nil
		}
	} else {
		user, err = s.findUserByEmail(ctx, token.Email)
	}
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperrors.NewNotFoundError(msgEmailNotExist)
	}

	now := s.Now()
	user.EmailVerified = &now
	user.Email = token.Email
	user.UpdatedAt = now
	if err := s.users.UpdateUser(ctx, *user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return "", apperrors.NewDuplicateEmailError(msgEmailInUse)
		}
		return "", fmt.Errorf("failed to verify email: %w", err)
	}
	s.deleteToken(ctx, token)

	s.LogInfo(ctx, "Email verified", slog.String("user_id", user.UserID))
	return "Email verified!", nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, req dto.ResetRequest) (string, error) {
	if err := validation.Struct(req); err != nil {
		return "", err
	}

	user, err := s.findUserByEmail(ctx, req.Email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperrors.NewNotFoundError("Email not found!")
	}

	token, err := s.tokenSvc.GeneratePasswordResetToken(ctx, user.Email)
	if err != nil {
		return "", err
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		s.LogError(ctx, err, "Failed to send password reset email")
		return "", apperrors.NewDeliveryError("Failed to send reset email", err)
	}
	return "Reset email sent!", nil
}

func (s *authService) ResetPassword(ctx context.Context, req dto.NewPasswordRequest) (string, error) {
	if req.Token == "" {
		return "", apperrors.NewBadRequestError("Missing token!")
	}
	if err := validation.Struct(req); err != nil {
		return "", err
	}

	token, err := s.consumableToken(ctx, domain.TokenKindPasswordReset, req.Token, msgTokenExpired)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.NewNotFoundError("Invalid token!")
		}
		return "", err
	}

	user, err := s.findUserByEmail(ctx, token.Email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperrors.NewNotFoundError(msgEmailNotExist)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = &hashed
	user.UpdatedAt = s.Now()
	if err := s.users.UpdateUser(ctx, *user); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}
	s.deleteToken(ctx, token)

	s.LogInfo(ctx, "Password reset", slog.String("user_id", user.UserID))
	return "Password updated!", nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*domain.LoginResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.findUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasPassword() {
		return nil, apperrors.NewAuthDeniedError(msgEmailNotExist, nil)
	}

	if !utils.MatchesPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.NewAuthDeniedError(msgInvalidCredential, nil)
	}

	if !user.IsVerified() {
		if err := s.sendVerification(ctx, user.Email, nil); err != nil {
			return nil, err
		}
		return &domain.LoginResult{Status: domain.LoginConfirmationSent, Message: msgConfirmationSent}, nil
	}

	if user.IsTwoFactorEnabled {
		if req.Code == "" {
			return s.startTwoFactor(ctx, user)
		}
		if err := s.confirmTwoFactor(ctx, user, req.Code); err != nil {
			return nil, err
		}
	}

	if err := authflow.AllowSignIn(ctx, domain.ProviderCredentials, user.UserID, s.users, s.twoFactor); err != nil {
		return nil, err
	}

	issued, err := s.tokenSvc.IssueSession(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "User signed in", slog.String("user_id", user.UserID))
	return &domain.LoginResult{Status: domain.LoginSignedIn, Issued: issued}, nil
}

func (s *authService) startTwoFactor(ctx context.Context, user *domain.User) (*domain.LoginResult, error) {
	code, err := s.tokenSvc.GenerateTwoFactorToken(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendTwoFactorTokenEmail(ctx, user.Email, code); err != nil {
		s.LogError(ctx, err, "Failed to send two-factor code")
		return nil, apperrors.NewDeliveryError("Failed to send two-factor code", err)
	}
	return &domain.LoginResult{Status: domain.LoginTwoFactorRequired}, nil
}

func (s *authService) confirmTwoFactor(ctx context.Context, user *domain.User, code string) error {
	token, err := s.tokens.FindTokenByEmail(ctx, domain.TokenKindTwoFactor, user.Email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewAuthDeniedError(msgInvalidCode, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to find two-factor token: %w", err)
	}
	if !utils.CompareTokenHash(code, token.Token) {
		return apperrors.NewAuthDeniedError(msgInvalidCode, nil)
	}
	if token.IsExpired(s.Now()) {
		return apperrors.NewAuthDeniedError(msgCodeExpired, nil)
	}

	s.deleteToken(ctx, token)

	confirmation := domain.TwoFactorConfirmation{
		ID:        uuid.NewString(),
		UserID:    user.UserID,
		CreatedAt: s.Now(),
	}
	if err := s.twoFactor.ReplaceTwoFactorConfirmation(ctx, confirmation); err != nil {
		return fmt.Errorf("failed to store two-factor confirmation: %w", err)
	}
	return nil
}

func (s *authService) SignInWithOAuth(ctx context.Context, profile domain.OAuthProfile) (*domain.IssuedSession, error) {
	if profile.ProviderAccountID == "" || profile.Email == "" {
		return nil, apperrors.NewAuthDeniedError("Provider did not return an email", nil)
	}

	userID, err := s.resolveOAuthUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	if err := authflow.AllowSignIn(ctx, profile.Provider, userID, s.users, s.twoFactor); err != nil {
		return nil, err
	}

	issued, err := s.tokenSvc.IssueSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "User signed in with OAuth", slog.String("user_id", userID), slog.String("provider", profile.Provider))
	return issued, nil
}

// resolveOAuthUser finds the user owning the provider identity, creating and
// linking one on first sign-in.
func (s *authService) resolveOAuthUser(ctx context.Context, profile domain.OAuthProfile) (string, error) {
	account, err := s.accounts.FindAccountByProvider(ctx, profile.Provider, profile.ProviderAccountID)
	if err == nil {
		return account.UserID, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("failed to find linked account: %w", err)
	}

	// A new link marks the email verified, so the provider must vouch for it.
	if !profile.EmailVerified {
		return "", apperrors.NewAuthDeniedError(msgOAuthUnverified, nil)
	}

	now := s.Now()
	link := domain.Account{
		AccountID:         uuid.NewString(),
		Type:              "oauth",
		Provider:          profile.Provider,
		ProviderAccountID: profile.ProviderAccountID,
		CreatedAt:         now,
	}

	existing, err := s.findUserByEmail(ctx, profile.Email)
	if err != nil {
		return "", err
	}

	switch {
	case existing != nil && existing.HasPassword():
		return "", apperrors.NewAuthDeniedError(msgNotLinked, nil)
	case existing != nil:
		link.UserID = existing.UserID
		if err := s.accounts.SaveAccount(ctx, link); err != nil {
			return "", fmt.Errorf("failed to link account: %w", err)
		}
	default:
		user := domain.User{
			UserID:     uuid.NewString(),
			Name:       profile.Name,
			Email:      profile.Email,
			Role:       domain.RoleUser,
			Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now},
		}
		if profile.Image != "" {
			user.Image = &profile.Image
		}
		link.UserID = user.UserID
		if err := s.accounts.SaveUserWithAccount(ctx, user, link); err != nil {
			return "", fmt.Errorf("failed to create oauth user: %w", err)
		}
		s.LogInfo(ctx, "OAuth user created", slog.String("user_id", user.UserID))
	}

	if err := authflow.LinkAccount(ctx, link.UserID, now, s.users); err != nil {
		return "", err
	}
	return link.UserID, nil
}

func (s *authService) RefreshSession(ctx context.Context, token string) (*domain.IssuedSession, error) {
	claims, err := s.tokenSvc.ParseSessionToken(ctx, token)
	if err != nil {
		s.LogDebug(ctx, "Session refresh rejected", slog.String("error", err.Error()))
		return nil, apperrors.NewUnauthorizedError("Invalid token")
	}
	return s.tokenSvc.IssueSession(ctx, claims.Subject)
}
