// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamminhduc/bazario/internal/platform/sec"
)

/*
TestGenerateSecureToken verifies tokens are non-empty, URL-safe, and unique.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, "+")
	assert.NotContains(t, first, "/")
	assert.NotContains(t, first, "=")
}

/*
TestGenerateOTP verifies the code has exactly the requested digit count and
contains only digits. Leading zeros are legal.
*/
func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := sec.GenerateOTP(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in otp", r)
		}
	}
}

/*
TestHashToken verifies the digest is deterministic and never echoes input.
*/
func TestHashToken(t *testing.T) {
	digest := sec.HashToken("my-secret-token")

	assert.Equal(t, digest, sec.HashToken("my-secret-token"))
	assert.NotEqual(t, digest, sec.HashToken("my-secret-tokeN"))
	assert.Len(t, digest, 64) // hex SHA-256
	assert.NotContains(t, digest, "my-secret")
}

/*
TestHashPassword_RoundTrip verifies bcrypt hashing and comparison.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("Sup3r$ecret!")
	require.NoError(t, err)

	assert.NotEqual(t, "Sup3r$ecret!", hash)
	assert.True(t, sec.CheckPasswordHash("Sup3r$ecret!", hash))
	assert.False(t, sec.CheckPasswordHash("sup3r$ecret!", hash))

	// Same password, different salt: hashes differ but both verify.
	other, err := sec.HashPassword("Sup3r$ecret!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
	assert.True(t, sec.CheckPasswordHash("Sup3r$ecret!", other))
}

/*
TestNormalizeEmail verifies trimming, lower-casing, and Unicode folding.
*/
func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already_canonical", "user@example.com", "user@example.com"},
		{"mixed_case", "User@Example.COM", "user@example.com"},
		{"surrounding_space", "  user@example.com\t", "user@example.com"},
		{"fullwidth_latin", "ｕser@example.com", "user@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sec.NormalizeEmail(tt.input))
		})
	}
}
