package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/internal/logger"
	"github.com/duynhne/inventory-service/middleware"
)

// AuthService implements authentication business rules.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users    domain.UserRepository
	verifier *CredentialVerifier
	sessions *SessionManager
	hasher   PasswordHasher
	validate *Validator
	events   domain.EventPublisher
	now      func() time.Time
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(
	users domain.UserRepository,
	verifier *CredentialVerifier,
	sessions *SessionManager,
	hasher PasswordHasher,
	validate *Validator,
	events domain.EventPublisher,
) *AuthService {
	return &AuthService{
		users:    users,
		verifier: verifier,
		sessions: sessions,
		hasher:   hasher,
		validate: validate,
		events:   events,
		now:      time.Now,
	}
}

// Register creates a user with the default role and logs them in.
// previousToken is the session cookie the client arrived with, if any.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest, previousToken string) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		middleware.RecordAuthAttempt("register", "validation_error")
		return nil, err
	}

	existing, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Username, err)
	}
	if existing != nil {
		middleware.RecordAuthAttempt("register", "duplicate")
		return nil, fmt.Errorf("register user %q: %w", req.Username, ErrUsernameTaken)
	}

	existing, err = s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query email: %w", err)
	}
	if existing != nil {
		middleware.RecordAuthAttempt("register", "duplicate")
		return nil, fmt.Errorf("register user %q: %w", req.Username, ErrEmailTaken)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// The UNIQUE constraints decide races the pre-checks above cannot see.
	row, err := s.users.Create(ctx, domain.NewUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		middleware.RecordAuthAttempt("register", "duplicate")
		return nil, fmt.Errorf("register user %q: %w", req.Username, ErrUsernameTaken)
	case errors.Is(err, domain.ErrDuplicateEmail):
		middleware.RecordAuthAttempt("register", "duplicate")
		return nil, fmt.Errorf("register user %q: %w", req.Username, ErrEmailTaken)
	case err != nil:
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	session, err := s.sessions.Create(ctx, row.ID, previousToken)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	user := row.Public()
	span.SetAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")
	middleware.RecordAuthAttempt("register", "success")
	s.publish(ctx, domain.EventUserRegistered, user.ID, user.Username)

	return &domain.AuthResponse{User: user, Session: session}, nil
}

// Login verifies credentials and issues a new session, destroying previousToken.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest, previousToken string) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		middleware.RecordAuthAttempt("login", "validation_error")
		return nil, err
	}

	result, err := s.verifier.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	switch result.Outcome {
	case domain.AuthValidationFailed:
		middleware.RecordAuthAttempt("login", "validation_error")
		return nil, &ValidationError{Errors: result.Errors}
	case domain.AuthInvalidCredentials:
		span.SetAttributes(attribute.Bool("auth.success", false))
		middleware.RecordAuthAttempt("login", "invalid_credentials")
		s.publish(ctx, domain.EventUserLoginFailed, 0, req.Username)
		return nil, fmt.Errorf("authenticate user %q: %w", req.Username, ErrInvalidCredentials)
	}

	session, err := s.sessions.Create(ctx, result.User.ID, previousToken)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("user.id", result.User.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")
	middleware.RecordAuthAttempt("login", "success")
	s.publish(ctx, domain.EventUserLoggedIn, result.User.ID, result.User.Username)

	return &domain.AuthResponse{User: result.User, Session: session}, nil
}

// Logout destroys the session behind token.
func (s *AuthService) Logout(ctx context.Context, user *domain.User, token string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := s.sessions.Destroy(ctx, token); err != nil {
		span.RecordError(err)
		return err
	}

	if user != nil {
		s.publish(ctx, domain.EventUserLoggedOut, user.ID, user.Username)
	}
	return nil
}

// UpdatePassword re-verifies the current password, stores the new one and
// rotates the session: every session of the user is dropped and a fresh one returned.
func (s *AuthService) UpdatePassword(ctx context.Context, user *domain.User, req domain.UpdatePasswordRequest) (*domain.Session, error) {
	if user == nil {
		return nil, ErrNotLoggedIn
	}

	ctx, span := middleware.StartSpan(ctx, "auth.update_password", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", user.ID),
	))
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		middleware.RecordAuthAttempt("update_password", "validation_error")
		return nil, err
	}

	row, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %d: %w", user.ID, err)
	}
	if row == nil {
		return nil, fmt.Errorf("user %d: %w", user.ID, ErrNotLoggedIn)
	}

	if !s.hasher.Verify(req.CurrentPassword, row.PasswordHash) {
		span.AddEvent("password.mismatch")
		middleware.RecordAuthAttempt("update_password", "wrong_password")
		return nil, fmt.Errorf("update password of user %d: %w", user.ID, ErrWrongPassword)
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Sessions go first: a failure past this point leaves the user logged out,
	// never holding old sessions next to a new password.
	if err := s.sessions.DestroyAll(ctx, user.ID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("store password of user %d: %w", user.ID, err)
	}

	session, err := s.sessions.Create(ctx, user.ID, "")
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.AddEvent("password.changed")
	middleware.RecordAuthAttempt("update_password", "success")
	s.publish(ctx, domain.EventPasswordChanged, user.ID, user.Username)

	return session, nil
}

// publish sends an audit event. Failures are logged and never fail the request.
func (s *AuthService) publish(ctx context.Context, typ domain.AuthEventType, userID int64, username string) {
	if s.events == nil {
		return
	}
	event := domain.AuthEvent{Type: typ, UserID: userID, Username: username, OccurredAt: s.now().UTC()}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("event", string(typ)).Msg("Audit event not published")
	}
}
