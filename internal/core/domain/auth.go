package domain

import (
	"context"
	"time"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,bcryptmax"`
	PasswordConfirm string `json:"passwordConfirm" validate:"omitempty,eqfield=Password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdatePasswordRequest is the body of PATCH /api/auth/update-password.
type UpdatePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,min=8,bcryptmax,nefield=CurrentPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"omitempty,eqfield=NewPassword"`
}

// AuthOutcome is the result kind of a credential check.
type AuthOutcome int

const (
	AuthInvalidCredentials AuthOutcome = iota
	AuthAuthenticated
	AuthValidationFailed
)

func (o AuthOutcome) String() string {
	switch o {
	case AuthAuthenticated:
		return "authenticated"
	case AuthValidationFailed:
		return "validation_failed"
	default:
		return "invalid_credentials"
	}
}

// AuthResult is returned by the credential verifier.
// User is set only when Outcome is AuthAuthenticated.
type AuthResult struct {
	Outcome AuthOutcome
	User    *User
	Errors  []string
}

// AuthEventType names an audit event.
type AuthEventType string

const (
	EventUserRegistered  AuthEventType = "user.registered"
	EventUserLoggedIn    AuthEventType = "user.logged_in"
	EventUserLoginFailed AuthEventType = "user.login_failed"
	EventUserLoggedOut   AuthEventType = "user.logged_out"
	EventPasswordChanged AuthEventType = "user.password_changed"
)

// AuthEvent is an audit record of an authentication action.
type AuthEvent struct {
	Type       AuthEventType `json:"type"`
	UserID     int64         `json:"userId,omitempty"`
	Username   string        `json:"username,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// EventPublisher delivers audit events. Delivery is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event AuthEvent) error
}

// AuthResponse is what a successful register or login produces: the public
// user and the session to hand back as a cookie.
type AuthResponse struct {
	User    *User
	Session *Session
}
