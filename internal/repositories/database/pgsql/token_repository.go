package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/core/domain"
	portsrepo "github.com/neptunetech/storefront/internal/core/ports/repositories"
)

type PgxEmailTokenRepository struct {
	BaseRepository
}

func newPgxEmailTokenRepository(db DB) portsrepo.EmailTokenRepository {
	return &PgxEmailTokenRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.EmailTokenRepository = (*PgxEmailTokenRepository)(nil)

func scanToken(row pgx.Row) (*domain.EmailToken, error) {
	var t domain.EmailToken
	var kind string
	if err := row.Scan(&t.ID, &kind, &t.Email, &t.Token, &t.UserID, &t.ExpiresAt); err != nil {
		return nil, err
	}
	t.Kind = domain.TokenKind(kind)
	return &t, nil
}

// SaveToken stores token.Token, which callers set to the token hash.
func (r *PgxEmailTokenRepository) SaveToken(ctx context.Context, token domain.EmailToken) error {
	query := `
        INSERT INTO email_tokens (token_id, kind, email, token_hash, user_id, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (kind, email) DO UPDATE SET
            token_id = EXCLUDED.token_id,
            token_hash = EXCLUDED.token_hash,
            user_id = EXCLUDED.user_id,
            expires_at = EXCLUDED.expires_at;
    `
	_, err := r.Pool.Exec(ctx, query,
		token.ID,
		string(token.Kind),
		token.Email,
		token.Token,
		token.UserID,
		token.ExpiresAt,
	)
	if err != nil {
		return wrapWriteErr(err, "failed to save email token")
	}
	return nil
}

func (r *PgxEmailTokenRepository) FindTokenByHash(ctx context.Context, kind domain.TokenKind, tokenHash string) (*domain.EmailToken, error) {
	query := `
		SELECT token_id, kind, email, token_hash, user_id, expires_at
		FROM email_tokens
		WHERE kind = $1 AND token_hash = $2;
	`
	t, err := scanToken(r.Pool.QueryRow(ctx, query, string(kind), tokenHash))
	if err != nil {
		return nil, wrapReadErr(err, "failed to find email token")
	}
	return t, nil
}

func (r *PgxEmailTokenRepository) FindTokenByEmail(ctx context.Context, kind domain.TokenKind, email string) (*domain.EmailToken, error) {
	query := `
		SELECT token_id, kind, email, token_hash, user_id, expires_at
		FROM email_tokens
		WHERE kind = $1 AND email = $2;
	`
	t, err := scanToken(r.Pool.QueryRow(ctx, query, string(kind), email))
	if err != nil {
		return nil, wrapReadErr(err, "failed to find email token by email")
	}
	return t, nil
}

func (r *PgxEmailTokenRepository) DeleteToken(ctx context.Context, tokenID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM email_tokens WHERE token_id = $1;`, tokenID)
	if err != nil {
		return fmt.Errorf("failed to delete email token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("email token %s: %w", tokenID, apperrors.ErrNotFound)
	}
	return nil
}

type PgxTwoFactorRepository struct {
	BaseRepository
}

func newPgxTwoFactorRepository(db DB) portsrepo.TwoFactorConfirmationRepository {
	return &PgxTwoFactorRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.TwoFactorConfirmationRepository = (*PgxTwoFactorRepository)(nil)

func (r *PgxTwoFactorRepository) ReplaceTwoFactorConfirmation(ctx context.Context, confirmation domain.TwoFactorConfirmation) error {
	query := `
        INSERT INTO two_factor_confirmations (confirmation_id, user_id, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET
            confirmation_id = EXCLUDED.confirmation_id,
            created_at = EXCLUDED.created_at;
    `
	if _, err := r.Pool.Exec(ctx, query, confirmation.ID, confirmation.UserID, confirmation.CreatedAt); err != nil {
		return fmt.Errorf("failed to save two-factor confirmation: %w", err)
	}
	return nil
}

// ConsumeTwoFactorConfirmation checks and deletes in one statement, so two
// concurrent sign-ins cannot both observe the same confirmation.
func (r *PgxTwoFactorRepository) ConsumeTwoFactorConfirmation(ctx context.Context, userID string) (bool, error) {
	var id string
	err := r.Pool.QueryRow(ctx,
		`DELETE FROM two_factor_confirmations WHERE user_id = $1 RETURNING confirmation_id;`,
		userID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume two-factor confirmation: %w", err)
	}
	return true, nil
}
