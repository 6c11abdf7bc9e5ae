package pgsql

import (
	portsrepo "github.com/neptunetech/storefront/internal/core/ports/repositories"
)

func NewRepositoryProvider(db DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:      newPgxUserRepository(db),
		AccountRepo:   newPgxAccountRepository(db),
		TokenRepo:     newPgxEmailTokenRepository(db),
		TwoFactorRepo: newPgxTwoFactorRepository(db),
		ProductRepo:   newPgxProductRepository(db),
	}
}
