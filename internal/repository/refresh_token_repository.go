package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contenthub/internal/models"
	"contenthub/internal/security"
)

// RefreshTokenRepository persists refresh tokens by their SHA-256 hash. Rows
// are only ever soft-revoked; expiry is not consulted here.
type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

func (r *RefreshTokenRepository) Save(ctx context.Context, token models.RefreshToken) error {
	const query = `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		security.HashRefreshToken(token.Token),
		token.ExpiresAt,
		token.Revoked,
	)
	return err
}

func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (models.RefreshToken, error) {
	const query = `
		SELECT id, user_id, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	return scanRefreshToken(r.pool.QueryRow(ctx, query, security.HashRefreshToken(token)), token)
}

func (r *RefreshTokenRepository) FindActiveByToken(ctx context.Context, token string) (models.RefreshToken, error) {
	const query = `
		SELECT id, user_id, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND revoked = FALSE
	`
	return scanRefreshToken(r.pool.QueryRow(ctx, query, security.HashRefreshToken(token)), token)
}

func (r *RefreshTokenRepository) RevokeAll(ctx context.Context, userID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

// Revoke flips a live token to revoked. A missing or already revoked token
// yields ErrRefreshTokenNotFound.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1 AND revoked = FALSE`
	cmd, err := r.pool.Exec(ctx, query, security.HashRefreshToken(token))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

func scanRefreshToken(row pgx.Row, plain string) (models.RefreshToken, error) {
	token := models.RefreshToken{Token: plain}
	if err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.ExpiresAt,
		&token.Revoked,
		&token.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RefreshToken{}, ErrRefreshTokenNotFound
		}
		return models.RefreshToken{}, err
	}
	return token, nil
}
