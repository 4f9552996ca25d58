package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/inventory-service/internal/core/domain"
)

const userColumns = `id, username, email, password_hash, role, created_at, updated_at`

// PgxUserRepository implements domain.UserRepository using pgxpool.
type PgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{pool: pool}
}

// GetByUsername returns the user matching the given username.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByUsername(ctx context.Context, username string) (*domain.UserRow, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetByEmail returns the user matching the given email.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByID returns the user with the given id, or (nil, nil).
func (r *PgxUserRepository) GetByID(ctx context.Context, id int64) (*domain.UserRow, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// Create inserts a new user and returns the stored row.
func (r *PgxUserRepository) Create(ctx context.Context, u domain.NewUser) (*domain.UserRow, error) {
	query := `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	row, err := scanUser(r.pool.QueryRow(ctx, query, u.Username, u.Email, u.PasswordHash, string(u.Role)))
	if err != nil {
		if constraint, ok := constraintViolation(err, uniqueViolation); ok {
			switch constraint {
			case "users_username_key":
				return nil, fmt.Errorf("insert user %q: %w", u.Username, domain.ErrDuplicateUsername)
			case "users_email_key":
				return nil, fmt.Errorf("insert user %q: %w", u.Username, domain.ErrDuplicateEmail)
			}
		}
		return nil, err
	}
	return row, nil
}

// UpdatePassword replaces the password hash and bumps updated_at.
func (r *PgxUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, passwordHash)
	return err
}

func (r *PgxUserRepository) getOne(ctx context.Context, query string, arg any) (*domain.UserRow, error) {
	row, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}

func scanUser(s pgx.Row) (*domain.UserRow, error) {
	var (
		row  domain.UserRow
		role string
	)
	if err := s.Scan(&row.ID, &row.Username, &row.Email, &row.PasswordHash, &role, &row.CreatedAt, &row.UpdatedAt); err != nil {
		return nil, err
	}
	row.Role = domain.Role(role)
	return &row, nil
}
