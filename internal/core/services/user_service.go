package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/core/domain"
	"github.com/neptunetech/storefront/internal/core/ports/gateways"
	portsrepo "github.com/neptunetech/storefront/internal/core/ports/repositories"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/dto"
	"github.com/neptunetech/storefront/internal/utils"
	"github.com/neptunetech/storefront/internal/validation"
)

type userService struct {
	BaseService
	users    portsrepo.UserRepositoryFacade
	accounts portsrepo.AccountRepositoryFacade
	tokenSvc portssvc.TokenSvcFacade
	mailer   gateways.Mailer
}

// UserServiceOption configures optional dependencies of the user service
type UserServiceOption func(*userService)

// WithUserTokenService enables email changes, which need a verification token.
func WithUserTokenService(tokenSvc portssvc.TokenSvcFacade) UserServiceOption {
	return func(s *userService) {
		s.tokenSvc = tokenSvc
	}
}

// WithUserMailer sets the mailer used for email change confirmations.
func WithUserMailer(mailer gateways.Mailer) UserServiceOption {
	return func(s *userService) {
		s.mailer = mailer
	}
}

func WithUserClock(clock func() time.Time) UserServiceOption {
	return func(s *userService) {
		s.Clock = clock
	}
}

func NewUserService(users portsrepo.UserRepositoryFacade, accounts portsrepo.AccountRepositoryFacade, options ...UserServiceOption) portssvc.UserSvcFacade {
	s := &userService{users: users, accounts: accounts}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		s.LogError(ctx, err, "Failed to get user", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to get user by ID in service: %w", err)
	}
	return user, nil
}

// UpdateSettings applies the settings form. Linked OAuth users keep their
// email, password and two-factor flag. An email change only sends a
// verification link to the new address and applies nothing else.
func (s *userService) UpdateSettings(ctx context.Context, userID string, req dto.SettingsRequest) (string, error) {
	if err := validation.Struct(req); err != nil {
		return "", err
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.NewUnauthorizedError("Unauthorized")
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	linked, err := s.accounts.HasLinkedAccount(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to check linked accounts: %w", err)
	}
	if linked {
		req.Email = nil
		req.Password = nil
		req.NewPassword = nil
		req.IsTwoFactorEnabled = nil
	}

	if req.Role != nil && *req.Role != user.Role && user.Role != domain.RoleAdmin {
		return "", apperrors.NewForbiddenError("Only admins can change roles")
	}

	if req.Email != nil && *req.Email != user.Email {
		return s.requestEmailChange(ctx, user, *req.Email)
	}

	if req.Password != nil || req.NewPassword != nil {
		if err := s.changePassword(user, req.Password, req.NewPassword); err != nil {
			return "", err
		}
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsTwoFactorEnabled != nil {
		user.IsTwoFactorEnabled = *req.IsTwoFactorEnabled
	}
	user.UpdatedAt = s.Now()

	if err := s.users.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to update settings", slog.String("user_id", userID))
		return "", fmt.Errorf("failed to update settings: %w", err)
	}
	return "Settings Updated!", nil
}

func (s *userService) requestEmailChange(ctx context.Context, user *domain.User, email string) (string, error) {
	if s.tokenSvc == nil || s.mailer == nil {
		return "", errors.New("email change is not configured")
	}

	existing, err := s.users.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil && existing.UserID != user.UserID {
		return "", apperrors.NewDuplicateEmailError(msgEmailInUse)
	}

	userID := user.UserID
	token, err := s.tokenSvc.GenerateVerificationToken(ctx, email, &userID)
	if err != nil {
		return "", err
	}
	if err := s.mailer.SendVerificationEmail(ctx, email, token); err != nil {
		s.LogError(ctx, err, "Failed to send email change verification")
		return "", apperrors.NewDeliveryError("Failed to send verification email", err)
	}
	return "Verification email sent!", nil
}

func (s *userService) changePassword(user *domain.User, current, next *string) error {
	if current == nil || next == nil {
		return apperrors.NewValidationError("Password and new password are both required")
	}
	if !utils.MatchesPassword(user.PasswordHash, *current) {
		return apperrors.NewAuthDeniedError("Incorrect password!", nil)
	}
	hashed, err := utils.HashPassword(*next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = &hashed
	return nil
}
