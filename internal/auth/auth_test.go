package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionToken(t *testing.T) {
	token, err := NewSessionToken()
	require.NoError(t, err)
	assert.Len(t, token, 32)

	_, err = hex.DecodeString(token)
	assert.NoError(t, err, "token should be valid hex")

	other, err := NewSessionToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "tokens should be unique")
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
	assert.False(t, CheckPassword("not a bcrypt hash", "anything"))
}
