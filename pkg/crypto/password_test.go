package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)
	require.NotEqual(t, "secret-password", hash)

	require.True(t, CheckPassword("secret-password", hash))
	require.False(t, CheckPassword("wrong-password", hash))
	require.False(t, CheckPassword("secret-password", "not-a-hash"))
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken(16)
	require.NoError(t, err)
	require.Len(t, a, 32) // hex doubles the byte length

	b, err := GenerateRandomToken(16)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestGenerateSessionID(t *testing.T) {
	a, err := GenerateSessionID()
	require.NoError(t, err)
	require.Len(t, a, 64)

	b, err := GenerateSessionID()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
