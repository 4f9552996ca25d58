package v1

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/middleware"
)

const tokenBytes = 32

// SessionManager issues, restores and destroys server-side sessions.
// The client holds an opaque random token; the store only sees its HMAC.
type SessionManager struct {
	repo   domain.SessionRepository
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewSessionManager(repo domain.SessionRepository, secret string, maxAge time.Duration) *SessionManager {
	return &SessionManager{
		repo:   repo,
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// MaxAge is the idle lifetime of a session.
func (m *SessionManager) MaxAge() time.Duration { return m.maxAge }

// Create issues a session for userID. previousToken, when set, is destroyed
// first so a pre-login session id is never promoted.
func (m *SessionManager) Create(ctx context.Context, userID int64, previousToken string) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "session.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if previousToken != "" {
		if err := m.repo.Delete(ctx, m.hash(previousToken)); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("destroy previous session: %w", err)
		}
	}

	token, err := newToken()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	expiresAt := m.now().Add(m.maxAge)
	if err := m.repo.Create(ctx, m.hash(token), userID, expiresAt); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create session for user %d: %w", userID, err)
	}

	middleware.RecordSessionIssued()
	return &domain.Session{Token: token, UserID: userID, ExpiresAt: expiresAt}, nil
}

// Resolve returns the current user behind token and slides the session expiry.
// Unknown, expired or orphaned sessions resolve to (nil, nil).
func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}

	ctx, span := middleware.StartSpan(ctx, "session.resolve", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	h := m.hash(token)
	row, err := m.repo.GetByTokenHash(ctx, h)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query session: %w", err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, nil
	}

	now := m.now()
	if !now.Before(row.ExpiresAt) {
		span.SetAttributes(attribute.Bool("session.valid", false))
		if err := m.repo.Delete(ctx, h); err != nil {
			span.RecordError(fmt.Errorf("delete expired session: %w", err))
		}
		return nil, nil
	}

	if err := m.repo.Touch(ctx, h, now.Add(m.maxAge)); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", row.User.ID),
		attribute.Bool("session.valid", true),
	)
	return row.User.Public(), nil
}

// Destroy deletes the session behind token. Unknown tokens are not an error.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.repo.Delete(ctx, m.hash(token)); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// DestroyAll deletes every session of the user.
func (m *SessionManager) DestroyAll(ctx context.Context, userID int64) error {
	if err := m.repo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("drop sessions of user %d: %w", userID, err)
	}
	return nil
}

// Rotate drops every session of the user and issues a fresh one.
func (m *SessionManager) Rotate(ctx context.Context, userID int64) (*domain.Session, error) {
	if err := m.DestroyAll(ctx, userID); err != nil {
		return nil, err
	}
	return m.Create(ctx, userID, "")
}

// PurgeExpired removes sessions past their expiry.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	middleware.RecordSessionsPurged(n)
	return n, nil
}

func (m *SessionManager) hash(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
