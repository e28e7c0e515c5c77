package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, h.Check(hash, "s3cret-pass"))
	assert.False(t, h.Check(hash, "s3cret-pasS"))
	assert.False(t, h.Check("not-a-hash", "s3cret-pass"))
}

func TestNewPasswordHasher_OutOfRangeCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).Cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(bcrypt.MaxCost+1).Cost)
	assert.Equal(t, bcrypt.MinCost, NewPasswordHasher(bcrypt.MinCost).Cost)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"abc1", ErrPasswordTooShort},
		{"abcdefgh", ErrPasswordTooWeak},
		{"12345678", ErrPasswordTooWeak},
		{strings.Repeat("a1", 37), ErrPasswordTooLong},
		{"correct1horse", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidatePassword(tt.password), tt.password)
	}
}
