package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_CheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse battery", hash)
	assert.True(t, CheckPassword("correct horse battery", hash))
	assert.False(t, CheckPassword("correct horse", hash))
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("mysecretpassword123")
	require.NoError(t, err)
	second, err := HashPassword("mysecretpassword123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1))

	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	assert.False(t, CheckPassword("password", "not-a-bcrypt-hash"))
}
