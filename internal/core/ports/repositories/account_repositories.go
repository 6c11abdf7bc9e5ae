package repositories

import (
	"context"

	"github.com/neptunetech/storefront/internal/core/domain"
)

// AccountReader defines read operations for linked OAuth accounts.
type AccountReader interface {
	// FindAccountByProvider retrieves the link for a provider identity.
	FindAccountByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error)

	// HasLinkedAccount reports whether the user has any linked account.
	HasLinkedAccount(ctx context.Context, userID string) (bool, error)
}

// AccountWriter defines write operations for linked OAuth accounts.
type AccountWriter interface {
	// SaveAccount links an existing user to a provider identity.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SaveUserWithAccount creates a user and its first linked account in one transaction.
	SaveUserWithAccount(ctx context.Context, user domain.User, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
