package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	passwords := []string{"password123", "pw1", "correct horse battery staple", "päss wörd"}

	for _, password := range passwords {
		hash, err := HashPassword(password)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$"))
		require.True(t, VerifyPassword(hash, password))
		require.False(t, VerifyPassword(hash, password+"x"))
	}
}

func TestHashPasswordEmptySentinel(t *testing.T) {
	hash, err := HashPassword("")
	require.NoError(t, err)
	require.Equal(t, "", hash)

	// A federated account with no local credential must never authenticate.
	require.False(t, VerifyPassword("", ""))
	require.False(t, VerifyPassword("", "anything"))
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("same-input")
	require.NoError(t, err)
	second, err := HashPassword("same-input")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.True(t, VerifyPassword(first, "same-input"))
	require.True(t, VerifyPassword(second, "same-input"))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	require.False(t, VerifyPassword("not-a-hash", "password"))
	require.False(t, VerifyPassword("$argon2id$v=19$m=banana$x$y", "password"))
	require.False(t, VerifyPassword("$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA", "password"))
}
