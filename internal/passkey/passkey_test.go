package passkey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveUserKey(t *testing.T) {
	key := DeriveUserKey("correct horse battery staple")

	// Hex SHA-256 digest: 64 lowercase hex characters.
	assert.Len(t, key, 64)
	assert.Equal(t, strings.ToLower(key), key)

	// Stable across calls.
	assert.Equal(t, key, DeriveUserKey("correct horse battery staple"))

	// Distinct secrets derive distinct keys.
	assert.NotEqual(t, key, DeriveUserKey("correct horse battery staples"))
}

func TestDeriveUserKey_EmptySecret(t *testing.T) {
	assert.Empty(t, DeriveUserKey(""))
}

func TestGenerate(t *testing.T) {
	pk, err := Generate()
	require.NoError(t, err)
	assert.Len(t, pk, Length)

	for _, r := range pk {
		assert.Contains(t, charset, string(r))
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		pk, err := Generate()
		require.NoError(t, err)
		assert.False(t, seen[pk])
		seen[pk] = true
	}
}

func TestGenerateN_InvalidLength(t *testing.T) {
	_, err := GenerateN(0)
	assert.Error(t, err)
	_, err = GenerateN(-5)
	assert.Error(t, err)
}

func TestEstimate_EmptyIsZero(t *testing.T) {
	s := Estimate("")
	assert.Zero(t, s.Score)
	assert.Zero(t, s.EntropyBits)
}

func TestEstimate_ShortIsZero(t *testing.T) {
	s := Estimate("aB3!x")
	assert.Zero(t, s.Score)
}

func TestEstimate_GeneratedIsStrong(t *testing.T) {
	pk, err := Generate()
	require.NoError(t, err)

	s := Estimate(pk)
	assert.Greater(t, s.Score, 80.0, "generated 25-char passkey should score high")
	assert.Greater(t, s.EntropyBits, 100.0)
	assert.NotEmpty(t, s.CrackTimeDisplay)
}

func TestEstimate_RepetitionPenalty(t *testing.T) {
	varied := Estimate("aB3!xQ9@mZ7#pW2$kT5%")
	repeated := Estimate("aaaaaaaaaaaaaaaaaaaa")

	assert.Greater(t, varied.Score, repeated.Score)
}

func TestEstimate_DiversityRaisesScore(t *testing.T) {
	lowerOnly := Estimate("abcdefghijklmnop")
	mixed := Estimate("abcdEFGH1234!@#$")

	assert.Greater(t, mixed.EntropyBits, lowerOnly.EntropyBits)
}
