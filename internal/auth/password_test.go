package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() { HashCost = bcrypt.MinCost }

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)
	assert.True(t, CheckPassword(hash, "Secret123"))
	assert.False(t, CheckPassword(hash, "secret123"))
}

func TestCheckStrength(t *testing.T) {
	assert.NoError(t, CheckStrength("Secret123"))
	assert.NoError(t, CheckStrength("Secret!!x"))
	for _, weak := range []string{"", "Short1", "alllower123", "ALLUPPER123", "NoDigitsHere"} {
		assert.ErrorIs(t, CheckStrength(weak), ErrWeakPassword, weak)
	}
}

func TestCheckStrengthRejectsOverlongPassword(t *testing.T) {
	assert.NoError(t, CheckStrength("Secret12"+strings.Repeat("a", MaxPasswordBytes-8)))
	long := "Secret123" + strings.Repeat("a", 74)
	assert.ErrorIs(t, CheckStrength(long), ErrPasswordTooLong)
	// multibyte runes count by byte
	assert.ErrorIs(t, CheckStrength("Secret1"+strings.Repeat("é", 33)), ErrPasswordTooLong)
}

func TestResetTokenDigest(t *testing.T) {
	tok, digest, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, tok, 40)
	assert.Equal(t, digest, HashResetToken(tok))
	assert.NotEqual(t, tok, digest)

	other, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}
