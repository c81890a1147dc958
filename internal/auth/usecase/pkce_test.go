package usecase

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeVerifier(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		v, err := generateCodeVerifier()
		require.NoError(t, err)
		assert.Len(t, v, verifierLength)
		for _, r := range v {
			assert.True(t, strings.ContainsRune(verifierCharset, r), "unexpected rune %q", r)
		}
		assert.False(t, seen[v], "verifiers must not repeat")
		seen[v] = true
	}
}

// The platform verifies challenges as hex SHA-256, not the base64url form of
// RFC 7636. Sending the RFC form makes every token exchange fail.
func TestCodeChallengeIsHexEncoded(t *testing.T) {
	verifier := "test-verifier-123"
	sum := sha256.Sum256([]byte(verifier))

	got := codeChallenge(verifier)
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
	assert.Len(t, got, 64)
	assert.NotEqual(t, base64.RawURLEncoding.EncodeToString(sum[:]), got)
}
