// Package passkey implements the client-secret side of RebelPost identity:
// generation of random passkeys, strength estimation, and derivation of the
// stable user key persisted by the server.
//
// The passkey itself never reaches the store. Only its one-way digest (the
// user key) is persisted and compared, so a database leak reveals nothing a
// rainbow table doesn't already know about a 25-character random secret.
package passkey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/nbutton23/zxcvbn-go"
)

// Length is the required passkey length.
const Length = 25

// charset matches the client-side generator: letters, digits, and symbols.
const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()-_=+[]{}|;:,.<>?"

// DeriveUserKey derives the stable user key from a passkey: the lowercase hex
// SHA-256 digest of the secret. An empty secret derives nothing.
func DeriveUserKey(secret string) string {
	if secret == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Generate creates a random passkey of the standard length using the
// system's CSPRNG.
func Generate() (string, error) {
	return GenerateN(Length)
}

// GenerateN creates a random passkey of n characters.
func GenerateN(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("passkey length must be positive, got %d", n)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	var sb strings.Builder
	sb.Grow(n)
	for _, b := range buf {
		sb.WriteByte(charset[int(b)%len(charset)])
	}
	return sb.String(), nil
}

// Strength holds the strength estimate for a passkey.
type Strength struct {
	// Score is 0-100, where 100 corresponds to roughly 128 bits of entropy.
	Score float64 `json:"score"`
	// EntropyBits is the estimated entropy from charset diversity and length.
	EntropyBits float64 `json:"entropy_bits"`
	// CrackTimeDisplay is a human-readable crack-time estimate from zxcvbn,
	// which also accounts for dictionary words and common patterns.
	CrackTimeDisplay string `json:"crack_time_display"`
}

// Estimate measures the strength of a passkey.
//
// The score is derived from charset-pool entropy (length × log2(pool size))
// normalized against a 128-bit target, with penalties for short length and
// character repetition. zxcvbn supplies the crack-time estimate so that
// dictionary-based passkeys are not over-credited by the pool formula.
func Estimate(passkey string) Strength {
	if passkey == "" {
		return Strength{CrackTimeDisplay: "instant"}
	}

	// Character set diversity determines the effective pool size.
	var pool float64
	if strings.ContainsFunc(passkey, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		pool += 26
	}
	if strings.ContainsFunc(passkey, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		pool += 26
	}
	if strings.ContainsFunc(passkey, func(r rune) bool { return r >= '0' && r <= '9' }) {
		pool += 10
	}
	if strings.ContainsFunc(passkey, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9')
	}) {
		pool += 33
	}
	if pool == 0 {
		pool = 1
	}

	length := float64(len([]rune(passkey)))
	entropy := length * math.Log2(pool)

	// Normalize against a 128-bit target for "very strong".
	score := math.Min(entropy/128*100, 100)

	// Penalize short passkeys regardless of diversity.
	if length < 12 {
		score *= length / 12
	}
	if length < 8 {
		score = 0
	}

	// Penalize repetition: a passkey of few distinct characters is weaker
	// than its pool entropy suggests.
	unique := make(map[rune]struct{}, len(passkey))
	for _, r := range passkey {
		unique[r] = struct{}{}
	}
	score *= float64(len(unique)) / length

	if score < 0 {
		score = 0
	}

	match := zxcvbn.PasswordStrength(passkey, nil)

	return Strength{
		Score:            score,
		EntropyBits:      entropy,
		CrackTimeDisplay: match.CrackTimeDisplay,
	}
}
