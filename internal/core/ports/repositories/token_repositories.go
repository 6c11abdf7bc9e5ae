package repositories

import (
	"context"

	"github.com/neptunetech/storefront/internal/core/domain"
)

// EmailTokenRepository stores verification, password reset and two-factor tokens.
// Tokens are stored and looked up by their hash.
type EmailTokenRepository interface {
	// SaveToken stores a token, replacing any token of the same kind for the same email.
	SaveToken(ctx context.Context, token domain.EmailToken) error

	// FindTokenByHash retrieves a token of the given kind by its hash.
	FindTokenByHash(ctx context.Context, kind domain.TokenKind, tokenHash string) (*domain.EmailToken, error)

	// FindTokenByEmail retrieves the active token of the given kind for an email.
	FindTokenByEmail(ctx context.Context, kind domain.TokenKind, email string) (*domain.EmailToken, error)

	// DeleteToken removes a token by ID.
	DeleteToken(ctx context.Context, tokenID string) error
}

// TwoFactorConfirmationRepository stores the single-use proof that a two-factor code was entered.
type TwoFactorConfirmationRepository interface {
	// ReplaceTwoFactorConfirmation drops any confirmation for the user and stores a fresh one.
	ReplaceTwoFactorConfirmation(ctx context.Context, confirmation domain.TwoFactorConfirmation) error

	// ConsumeTwoFactorConfirmation deletes the user's confirmation in a single statement
	// and reports whether one existed.
	ConsumeTwoFactorConfirmation(ctx context.Context, userID string) (bool, error)
}
