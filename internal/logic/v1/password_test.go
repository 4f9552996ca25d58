package v1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	d1, err := h.Hash("correct horse")
	require.NoError(t, err)
	d2, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2, "each digest carries its own salt")
	assert.NotContains(t, d1, "correct horse")
	assert.True(t, h.Verify("correct horse", d1))
	assert.True(t, h.Verify("correct horse", d2))
	assert.False(t, h.Verify("wrong horse", d1))
}

func TestBcryptHasherMalformedDigest(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("anything", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("anything", ""))
}

func TestBcryptHasherCostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(1).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}

func TestBcryptHasherRejectsLongPassword(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("a", 73))
	assert.Error(t, err)
}
