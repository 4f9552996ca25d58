package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/inventory-service/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using pgxpool.
type PgxSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

// Create inserts a new session for the given user.
func (r *PgxSessionRepository) Create(ctx context.Context, tokenHash string, userID int64, expiresAt time.Time) error {
	query := `INSERT INTO sessions (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`
	_, err := r.pool.Exec(ctx, query, tokenHash, userID, expiresAt)
	return err
}

// GetByTokenHash looks up the session and returns it joined with its user.
// The inner join drops sessions whose user has been deleted.
// Returns (nil, nil) when the token does not match any session.
func (r *PgxSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.SessionRow, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.role, u.created_at, u.updated_at, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token_hash = $1
	`

	var (
		row  domain.SessionRow
		role string
	)
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&row.User.ID, &row.User.Username, &row.User.Email, &row.User.PasswordHash,
		&role, &row.User.CreatedAt, &row.User.UpdatedAt, &row.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	row.User.Role = domain.Role(role)

	return &row, nil
}

// Touch moves the expiry of a session forward.
func (r *PgxSessionRepository) Touch(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET expires_at = $2 WHERE token_hash = $1`, tokenHash, expiresAt)
	return err
}

// Delete removes one session.
func (r *PgxSessionRepository) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

// DeleteByUser removes every session of a user.
func (r *PgxSessionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

// DeleteExpired removes sessions that expired before now.
func (r *PgxSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
