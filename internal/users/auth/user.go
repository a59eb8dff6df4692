// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

/*
Package auth implements the user identity and session lifecycle layer.

It defines the core domain entities (User, Session) and logic for
registration, email verification, login with lockout protection, token
issuance, password reset, and multi-device session management.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/phamminhduc/bazario/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Bazario marketplace.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	IsVerified   bool         `json:"is_verified"`

	// TokenVersion invalidates every outstanding JWT when bumped.
	// Never serialized to clients.
	TokenVersion int64 `json:"-"`

	// Lockout bookkeeping. A non-nil LockUntil in the future means the
	// account rejects logins regardless of credentials.
	FailedLoginCount int        `json:"-"`
	LockUntil        *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsLocked reports whether the account is currently inside a lockout window.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}

// Session represents one device's refresh-token session.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	TokenHash   string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	DeviceLabel string    `json:"device_label"`
	IPAddress   string    `json:"ip_address"`
	ExpiresAt   time.Time `json:"expires_at"`
	IsRevoked   bool      `json:"is_revoked"`
	CreatedAt   time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldDisplayName     = "display_name"
	FieldToken           = "token"
	FieldCode            = "code"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldRefreshToken    = "refresh_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
	FieldSessions        = "sessions"
	FieldDeviceLabel     = "device_label"
)
