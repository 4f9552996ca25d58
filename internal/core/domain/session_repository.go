package domain

import (
	"context"
	"time"
)

// SessionRow represents a session joined with its owner user,
// returned by session lookup queries.
type SessionRow struct {
	User      UserRow
	ExpiresAt time.Time
}

// Session is a freshly issued session. Token is the opaque value handed to the
// client; only its hash is persisted.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

// SessionRepository defines the data-access contract for session operations.
// Implementations live in internal/core/repository (Core layer).
type SessionRepository interface {
	// Create inserts a new session for the given user.
	Create(ctx context.Context, tokenHash string, userID int64, expiresAt time.Time) error

	// GetByTokenHash looks up the session and returns it joined with its user.
	// Returns (nil, nil) when no session matches or its user no longer exists.
	GetByTokenHash(ctx context.Context, tokenHash string) (*SessionRow, error)

	// Touch moves the expiry of a session forward.
	Touch(ctx context.Context, tokenHash string, expiresAt time.Time) error

	// Delete removes one session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteByUser removes every session of a user.
	DeleteByUser(ctx context.Context, userID int64) error

	// DeleteExpired removes sessions that expired before now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
