// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [TokenProvider] interface defined by the domain.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/phamminhduc/bazario/pkg/uuid"
)

// Token type discriminators carried in the "typ" claim.
//
// Access and refresh tokens are signed with the same process-wide secret;
// the claim is the only thing that distinguishes them, so every refresh-flow
// consumer must reject tokens whose typ is not TokenTypeRefresh.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// MinSecretLength is the minimum byte length of the HMAC signing secret.
// Startup fails hard below this; a short secret makes every session forgeable.
const MinSecretLength = 32

// AuthClaims represents the payload embedded inside a Bazario JWT.
//
// # Why custom claims?
//
// By embedding the UserID, Role, and TokenVersion directly inside the JWT,
// the middleware can reconstruct the active user context and pin the token
// against the account's current version without parsing anything else.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID       string `json:"uid"`
	Role         string `json:"rol,omitempty"`
	TokenVersion int64  `json:"tv"`
	TokenType    string `json:"typ"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService from the process-wide signing secret.
//
// It returns an error if the secret is shorter than [MinSecretLength] bytes;
// callers must treat that error as fatal (the process refuses to start).
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("sec: signing secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}

	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// IssueAccessToken creates a short-lived access token for a user.
func (service *TokenService) IssueAccessToken(userID, role string, tokenVersion int64, timeToLive time.Duration) (string, error) {
	return service.issue(userID, role, tokenVersion, TokenTypeAccess, timeToLive)
}

// IssueRefreshToken creates a long-lived refresh token for a user.
//
// Refresh tokens carry no role: the role is re-read from the account when a
// new access token is minted, so a role change takes effect on next refresh.
func (service *TokenService) IssueRefreshToken(userID string, tokenVersion int64, timeToLive time.Duration) (string, error) {
	return service.issue(userID, "", tokenVersion, TokenTypeRefresh, timeToLive)
}

func (service *TokenService) issue(userID, role string, tokenVersion int64, tokenType string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// iat/exp only have second granularity; the jti keeps two tokens
			// minted for the same account in the same second distinct, so
			// their hashes never collide in the session store.
			ID:        uuid.New(),
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:       userID,
		Role:         role,
		TokenVersion: tokenVersion,
		TokenType:    tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyAccessToken checks signature, validity, and typ=access.
func (service *TokenService) VerifyAccessToken(tokenString string) (*AuthClaims, error) {
	return service.verify(tokenString, TokenTypeAccess)
}

// VerifyRefreshToken checks signature, validity, and typ=refresh.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*AuthClaims, error) {
	return service.verify(tokenString, TokenTypeRefresh)
}

func (service *TokenService) verify(tokenString, expectedType string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	}, jwt.WithIssuer(service.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	// A valid signature is not enough: an access token presented to the
	// refresh endpoint (or vice versa) must be rejected.
	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("sec: token type mismatch: expected %s", expectedType)
	}

	return claims, nil
}
