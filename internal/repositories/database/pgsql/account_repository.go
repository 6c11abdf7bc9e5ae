package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/neptunetech/storefront/internal/core/domain"
	portsrepo "github.com/neptunetech/storefront/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(db DB) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func insertAccount(ctx context.Context, db execer, account domain.Account) error {
	query := `
        INSERT INTO accounts (account_id, user_id, type, provider, provider_account_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6);
    `
	_, err := db.Exec(ctx, query,
		account.AccountID,
		account.UserID,
		account.Type,
		account.Provider,
		account.ProviderAccountID,
		account.CreatedAt,
	)
	if err != nil {
		return wrapWriteErr(err, "failed to save account")
	}
	return nil
}

func (r *PgxAccountRepository) FindAccountByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, user_id, type, provider, provider_account_id, created_at
		FROM accounts
		WHERE provider = $1 AND provider_account_id = $2;
	`
	var a domain.Account
	err := r.Pool.QueryRow(ctx, query, provider, providerAccountID).Scan(
		&a.AccountID,
		&a.UserID,
		&a.Type,
		&a.Provider,
		&a.ProviderAccountID,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, wrapReadErr(err, "failed to find account by provider")
	}
	return &a, nil
}

func (r *PgxAccountRepository) HasLinkedAccount(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE user_id = $1);`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check linked accounts: %w", err)
	}
	return exists, nil
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	return insertAccount(ctx, r.Pool, account)
}

func (r *PgxAccountRepository) SaveUserWithAccount(ctx context.Context, user domain.User, account domain.Account) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		return insertAccount(ctx, tx, account)
	})
}
