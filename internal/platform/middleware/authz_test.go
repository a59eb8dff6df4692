// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamminhduc/bazario/internal/platform/middleware"
	"github.com/phamminhduc/bazario/internal/platform/sec"
)

// fakeVerifier maps token strings to canned claims.
type fakeVerifier struct {
	tokens map[string]*sec.AuthClaims
}

func (v *fakeVerifier) VerifyAccessToken(tokenStr string) (*sec.AuthClaims, error) {
	claims, ok := v.tokens[tokenStr]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// fakeVersions serves per-user token versions, optionally failing.
type fakeVersions struct {
	versions map[string]int64
	err      error
}

func (s *fakeVersions) TokenVersion(_ context.Context, userID string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.versions[userID], nil
}

// echoUser is a terminal handler that reports the authenticated user ID.
func echoUser(t *testing.T, sawUser *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if claims := middleware.GetUser(request.Context()); claims != nil {
			*sawUser = claims.UserID
		}
		writer.WriteHeader(http.StatusOK)
	})
}

func newAuthFixture() (*fakeVerifier, *fakeVersions) {
	verifier := &fakeVerifier{tokens: map[string]*sec.AuthClaims{
		"good-token": {UserID: "user-1", Role: "user", TokenVersion: 2},
		"old-token":  {UserID: "user-1", Role: "user", TokenVersion: 1},
	}}
	versions := &fakeVersions{versions: map[string]int64{"user-1": 2}}
	return verifier, versions
}

/*
TestAuthenticate_AnonymousPassThrough verifies a request without an
Authorization header reaches the handler unauthenticated.
*/
func TestAuthenticate_AnonymousPassThrough(t *testing.T) {
	verifier, versions := newAuthFixture()
	var sawUser string

	handler := middleware.Authenticate(verifier, versions)(echoUser(t, &sawUser))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, sawUser)
}

/*
TestAuthenticate_ValidToken verifies a matching token injects the claims.
*/
func TestAuthenticate_ValidToken(t *testing.T) {
	verifier, versions := newAuthFixture()
	var sawUser string

	handler := middleware.Authenticate(verifier, versions)(echoUser(t, &sawUser))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "user-1", sawUser)
}

/*
TestAuthenticate_MalformedHeader verifies bad header shapes fail with 401
before any token parsing.
*/
func TestAuthenticate_MalformedHeader(t *testing.T) {
	verifier, versions := newAuthFixture()
	handler := middleware.Authenticate(verifier, versions)(echoUser(t, new(string)))

	for _, header := range []string{"good-token", "Basic abc123", "Bearer a b"} {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", header)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code, "header %q", header)
	}
}

/*
TestAuthenticate_InvalidToken verifies unknown tokens fail with 401.
*/
func TestAuthenticate_InvalidToken(t *testing.T) {
	verifier, versions := newAuthFixture()
	handler := middleware.Authenticate(verifier, versions)(echoUser(t, new(string)))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer forged-token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestAuthenticate_StaleVersionRejected verifies a signature-valid token with
a version behind the account's current one is treated as revoked.
*/
func TestAuthenticate_StaleVersionRejected(t *testing.T) {
	verifier, versions := newAuthFixture()
	var sawUser string
	handler := middleware.Authenticate(verifier, versions)(echoUser(t, &sawUser))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer old-token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, sawUser)
}

/*
TestAuthenticate_VersionSourceFailure verifies that when the version lookup
errors, the request fails closed with 401.
*/
func TestAuthenticate_VersionSourceFailure(t *testing.T) {
	verifier, versions := newAuthFixture()
	versions.err = errors.New("database down")
	handler := middleware.Authenticate(verifier, versions)(echoUser(t, new(string)))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestRequireAuth verifies the anonymous/authenticated gate.
*/
func TestRequireAuth(t *testing.T) {
	verifier, versions := newAuthFixture()
	chain := middleware.Authenticate(verifier, versions)(
		middleware.RequireAuth(echoUser(t, new(string))))

	// 1. Anonymous is blocked.
	recorder := httptest.NewRecorder()
	chain.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// 2. Authenticated passes.
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	recorder = httptest.NewRecorder()
	chain.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestRequireRole verifies role gating: user tokens cannot pass an admin gate,
admin tokens pass both gates.
*/
func TestRequireRole(t *testing.T) {
	verifier, versions := newAuthFixture()
	verifier.tokens["admin-token"] = &sec.AuthClaims{UserID: "admin-1", Role: "admin", TokenVersion: 0}

	adminOnly := middleware.Authenticate(verifier, versions)(
		middleware.RequireRole(sec.RoleAdmin)(echoUser(t, new(string))))

	// 1. Plain user is forbidden.
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	recorder := httptest.NewRecorder()
	adminOnly.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// 2. Anonymous is unauthorized, not forbidden.
	recorder = httptest.NewRecorder()
	adminOnly.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// 3. Admin passes.
	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer admin-token")
	recorder = httptest.NewRecorder()
	adminOnly.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestGetUser verifies the context accessor returns nil for anonymous contexts.
*/
func TestGetUser(t *testing.T) {
	require.Nil(t, middleware.GetUser(context.Background()))
}
