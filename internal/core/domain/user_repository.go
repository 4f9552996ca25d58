package domain

import (
	"context"
	"time"
)

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is the public view of a user. It never carries the password hash.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public strips the password hash.
func (r *UserRow) Public() *User {
	return &User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		Role:      r.Role,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// NewUser holds the fields required to insert a user.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Role         Role
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only, never on SQL or pgx directly.
type UserRepository interface {
	// GetByUsername returns the user matching the given username.
	// Returns (nil, nil) when no user is found.
	GetByUsername(ctx context.Context, username string) (*UserRow, error)

	// GetByEmail returns the user matching the given email.
	// Returns (nil, nil) when no user is found.
	GetByEmail(ctx context.Context, email string) (*UserRow, error)

	// GetByID returns the user with the given id, or (nil, nil).
	GetByID(ctx context.Context, id int64) (*UserRow, error)

	// Create inserts a new user and returns the stored row.
	// A unique violation is reported as ErrDuplicateUsername or ErrDuplicateEmail.
	Create(ctx context.Context, u NewUser) (*UserRow, error)

	// UpdatePassword replaces the password hash and bumps updated_at.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
