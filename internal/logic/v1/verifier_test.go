package v1

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/internal/core/repository/memstore"
)

// countingHasher records which digests Verify was asked to check.
type countingHasher struct {
	verified []string
}

func (h *countingHasher) Hash(plain string) (string, error) { return "digest:" + plain, nil }

func (h *countingHasher) Verify(plain, digest string) bool {
	h.verified = append(h.verified, digest)
	return digest == "digest:"+plain
}

type failingUsers struct{ domain.UserRepository }

func (failingUsers) GetByUsername(context.Context, string) (*domain.UserRow, error) {
	return nil, errors.New("connection reset")
}

func TestCredentialVerifier(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	hasher := &countingHasher{}
	_, err := store.Users().Create(ctx, domain.NewUser{
		Username: "alice", Email: "a@example.com", PasswordHash: "digest:password1", Role: domain.RoleUser,
	})
	require.NoError(t, err)

	v, err := NewCredentialVerifier(store.Users(), hasher)
	require.NoError(t, err)

	t.Run("correct password authenticates", func(t *testing.T) {
		res, err := v.Authenticate(ctx, "alice", "password1")
		require.NoError(t, err)
		assert.Equal(t, domain.AuthAuthenticated, res.Outcome)
		require.NotNil(t, res.User)
		assert.Equal(t, "alice", res.User.Username)
		assert.Equal(t, domain.RoleUser, res.User.Role)
	})

	t.Run("wrong password is invalid credentials", func(t *testing.T) {
		res, err := v.Authenticate(ctx, "alice", "password2")
		require.NoError(t, err)
		assert.Equal(t, domain.AuthInvalidCredentials, res.Outcome)
		assert.Nil(t, res.User)
	})

	t.Run("unknown user is indistinguishable and still compares a digest", func(t *testing.T) {
		hasher.verified = nil
		res, err := v.Authenticate(ctx, "mallory", "password1")
		require.NoError(t, err)
		assert.Equal(t, domain.AuthInvalidCredentials, res.Outcome)
		assert.Nil(t, res.User)
		assert.Equal(t, []string{v.dummyHash}, hasher.verified)
	})

	t.Run("empty fields fail validation", func(t *testing.T) {
		res, err := v.Authenticate(ctx, "", "")
		require.NoError(t, err)
		assert.Equal(t, domain.AuthValidationFailed, res.Outcome)
		assert.Equal(t, []string{"Username is required", "Password is required"}, res.Errors)
	})

	t.Run("store failure is an error", func(t *testing.T) {
		broken, err := NewCredentialVerifier(failingUsers{}, hasher)
		require.NoError(t, err)
		_, err = broken.Authenticate(ctx, "alice", "password1")
		assert.Error(t, err)
	})
}
