package services

import (
	"context"

	"github.com/neptunetech/storefront/internal/core/domain"
	"github.com/neptunetech/storefront/internal/dto"
)

// UserSvcFacade defines the signed-in user's profile operations.
type UserSvcFacade interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// UpdateSettings applies a settings change and returns the result message.
	UpdateSettings(ctx context.Context, userID string, req dto.SettingsRequest) (string, error)
}
