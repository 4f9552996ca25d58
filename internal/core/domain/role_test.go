package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRegisterRole(t *testing.T) {
	auditor := Role("auditor")
	assert.False(t, auditor.Valid())

	require.NoError(t, RegisterRole(auditor))
	assert.True(t, auditor.Valid())

	assert.Error(t, RegisterRole(""))
}

func TestUserRowPublicStripsHash(t *testing.T) {
	row := &UserRow{ID: 7, Username: "alice", Email: "a@example.com", PasswordHash: "$2a$10$x", Role: RoleUser}
	u := row.Public()

	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, RoleUser, u.Role)
}
