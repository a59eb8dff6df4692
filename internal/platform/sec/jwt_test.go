// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamminhduc/bazario/internal/platform/sec"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 bytes
const testIssuer = "bazario.test"

func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(testSecret, testIssuer)
	require.NoError(t, err)
	return service
}

/*
TestNewTokenService_RejectsShortSecret verifies startup fails hard on a
signing secret below the minimum length.
*/
func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	_, err := sec.NewTokenService("too-short", testIssuer)
	require.Error(t, err)

	// One byte under the limit still fails.
	_, err = sec.NewTokenService(strings.Repeat("x", sec.MinSecretLength-1), testIssuer)
	require.Error(t, err)

	// Exactly the limit is accepted.
	_, err = sec.NewTokenService(strings.Repeat("x", sec.MinSecretLength), testIssuer)
	require.NoError(t, err)
}

/*
TestAccessToken_RoundTrip verifies an issued access token carries the
identity claims back through verification.
*/
func TestAccessToken_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.IssueAccessToken("user-123", "admin", 7, 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, int64(7), claims.TokenVersion)
	assert.Equal(t, sec.TokenTypeAccess, claims.TokenType)
	assert.Equal(t, testIssuer, claims.Issuer)
}

/*
TestRefreshToken_RoundTrip verifies refresh tokens verify and carry no role.
*/
func TestRefreshToken_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.IssueRefreshToken("user-123", 3, 24*time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyRefreshToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Empty(t, claims.Role, "refresh tokens must not carry a role")
	assert.Equal(t, int64(3), claims.TokenVersion)
	assert.Equal(t, sec.TokenTypeRefresh, claims.TokenType)
}

/*
TestIssueRefreshToken_UniquePerCall verifies two refresh tokens minted back
to back for the same account are distinct. The claims only carry
second-granularity timestamps, so the uniqueness must come from the jti —
otherwise two same-second logins would hash to the same session row.
*/
func TestIssueRefreshToken_UniquePerCall(t *testing.T) {
	service := newTestTokenService(t)

	first, err := service.IssueRefreshToken("user-123", 0, 24*time.Hour)
	require.NoError(t, err)
	second, err := service.IssueRefreshToken("user-123", 0, 24*time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, sec.HashToken(first), sec.HashToken(second))

	// Access tokens carry a jti too.
	firstAccess, err := service.IssueAccessToken("user-123", "user", 0, time.Minute)
	require.NoError(t, err)
	secondAccess, err := service.IssueAccessToken("user-123", "user", 0, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, firstAccess, secondAccess)
}

/*
TestTokenTypePinning verifies an access token presented to the refresh
verifier fails, and vice versa — the typ claim is the only discriminator.
*/
func TestTokenTypePinning(t *testing.T) {
	service := newTestTokenService(t)

	accessToken, err := service.IssueAccessToken("user-123", "user", 0, time.Minute)
	require.NoError(t, err)
	refreshToken, err := service.IssueRefreshToken("user-123", 0, time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyRefreshToken(accessToken)
	require.Error(t, err, "access token must not pass refresh verification")

	_, err = service.VerifyAccessToken(refreshToken)
	require.Error(t, err, "refresh token must not pass access verification")
}

/*
TestVerify_RejectsExpiredToken verifies a token past its expiry fails.
*/
func TestVerify_RejectsExpiredToken(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.IssueAccessToken("user-123", "user", 0, -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyAccessToken(token)
	require.Error(t, err)
}

/*
TestVerify_RejectsForeignSignature verifies a token signed with a different
secret fails verification.
*/
func TestVerify_RejectsForeignSignature(t *testing.T) {
	service := newTestTokenService(t)

	foreign, err := sec.NewTokenService(strings.Repeat("z", sec.MinSecretLength), testIssuer)
	require.NoError(t, err)

	token, err := foreign.IssueAccessToken("user-123", "user", 0, time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyAccessToken(token)
	require.Error(t, err)
}

/*
TestVerify_RejectsWrongIssuer verifies tokens minted for a different issuer
are refused even with the right secret.
*/
func TestVerify_RejectsWrongIssuer(t *testing.T) {
	service := newTestTokenService(t)

	other, err := sec.NewTokenService(testSecret, "someone-else")
	require.NoError(t, err)

	token, err := other.IssueAccessToken("user-123", "user", 0, time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyAccessToken(token)
	require.Error(t, err)
}

/*
TestVerify_RejectsGarbage verifies unparseable strings fail cleanly.
*/
func TestVerify_RejectsGarbage(t *testing.T) {
	service := newTestTokenService(t)

	for _, input := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		_, err := service.VerifyAccessToken(input)
		assert.Error(t, err, "input %q should not verify", input)
	}
}
