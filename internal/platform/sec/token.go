// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

// # Opaque Secrets

// GenerateSecureToken returns a URL-safe random token of the given byte length.
//
// Used for email verification links. The raw value is mailed to the user;
// only its hash ever touches storage.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// GenerateOTP returns a random numeric one-time code of the given digit count.
//
// The leading digit may be zero, so codes must be treated as strings end to end.
func GenerateOTP(digits int) (string, error) {
	code := make([]byte, digits)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("sec: failed to generate otp: %w", err)
		}
		code[i] = byte('0') + byte(n.Int64())
	}
	return string(code), nil
}

// # Irreversible At-Rest Hashing

// HashToken returns the hex-encoded SHA-256 of an opaque secret.
//
// Verification tokens, reset codes, and refresh tokens are stored only in
// this form; lookups hash the inbound candidate and match, never compare
// plaintext.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
