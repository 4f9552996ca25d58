package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/middleware"
)

// CredentialVerifier checks a username and password against the user store.
// It never writes.
type CredentialVerifier struct {
	users  domain.UserRepository
	hasher PasswordHasher
	// dummyHash is compared against when the user does not exist, so an unknown
	// username costs as much as a wrong password.
	dummyHash string
}

func NewCredentialVerifier(users domain.UserRepository, hasher PasswordHasher) (*CredentialVerifier, error) {
	dummy, err := hasher.Hash("timing-equalizer-password")
	if err != nil {
		return nil, fmt.Errorf("create verifier: %w", err)
	}
	return &CredentialVerifier{users: users, hasher: hasher, dummyHash: dummy}, nil
}

// Authenticate returns AuthAuthenticated with the public user on a match,
// AuthInvalidCredentials on an unknown user or wrong password, and
// AuthValidationFailed when a field is empty. The error is for store failures only.
func (v *CredentialVerifier) Authenticate(ctx context.Context, username, password string) (domain.AuthResult, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.verify_credentials", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", username),
	))
	defer span.End()

	var missing []string
	if username == "" {
		missing = append(missing, "Username is required")
	}
	if password == "" {
		missing = append(missing, "Password is required")
	}
	if len(missing) > 0 {
		return domain.AuthResult{Outcome: domain.AuthValidationFailed, Errors: missing}, nil
	}

	row, err := v.users.GetByUsername(ctx, username)
	if err != nil {
		span.RecordError(err)
		return domain.AuthResult{}, fmt.Errorf("query user %q: %w", username, err)
	}

	if row == nil {
		v.hasher.Verify(password, v.dummyHash)
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return domain.AuthResult{Outcome: domain.AuthInvalidCredentials}, nil
	}

	if !v.hasher.Verify(password, row.PasswordHash) {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return domain.AuthResult{Outcome: domain.AuthInvalidCredentials}, nil
	}

	span.SetAttributes(
		attribute.Int64("user.id", row.ID),
		attribute.Bool("auth.success", true),
	)
	return domain.AuthResult{Outcome: domain.AuthAuthenticated, User: row.Public()}, nil
}
