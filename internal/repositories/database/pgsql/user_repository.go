package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/core/domain"
	portsrepo "github.com/neptunetech/storefront/internal/core/ports/repositories"
)

const userColumns = `user_id, name, email, password_hash, email_verified, image, role, is_two_factor_enabled, created_at, updated_at`

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db DB) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(
		&u.UserID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.EmailVerified,
		&u.Image,
		&role,
		&u.IsTwoFactorEnabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}

func insertUser(ctx context.Context, db execer, user domain.User) error {
	query := `
        INSERT INTO users (` + userColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
    `
	_, err := db.Exec(ctx, query,
		user.UserID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.EmailVerified,
		user.Image,
		string(user.Role),
		user.IsTwoFactorEnabled,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr(err, "failed to save user")
	}
	return nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	return insertUser(ctx, r.Pool, user)
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1;`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, wrapReadErr(err, fmt.Sprintf("failed to find user by ID %s", userID))
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1;`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, wrapReadErr(err, "failed to find user by email")
	}
	return user, nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `
        UPDATE users
        SET name = $1, email = $2, password_hash = $3, email_verified = $4, image = $5,
            role = $6, is_two_factor_enabled = $7, updated_at = $8
        WHERE user_id = $9;
    `
	cmdTag, err := r.Pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.EmailVerified,
		user.Image,
		string(user.Role),
		user.IsTwoFactorEnabled,
		user.UpdatedAt,
		user.UserID,
	)
	if err != nil {
		return wrapWriteErr(err, "failed to execute update user query")
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found: %w", user.UserID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxUserRepository) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	query := `UPDATE users SET email_verified = $1, updated_at = $1 WHERE user_id = $2;`
	cmdTag, err := r.Pool.Exec(ctx, query, at, userID)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}
