package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, hasher.Compare(hash, "s3cret-pass"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong"), ErrPasswordNoMatch)
}

func TestBcryptHasherRejectsEmpty(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestBcryptHasherClampsCost(t *testing.T) {
	h := NewBcryptHasher(1000).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
