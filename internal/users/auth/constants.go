// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a session/refresh token remains valid.
	// Long-lived (30 days) to provide a good user experience.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// VerificationTokenTTL is the duration an email verification token remains valid.
	// Long-lived (24 hours) as users might not check email immediately.
	VerificationTokenTTL = 24 * time.Hour

	// VerificationTokenLength is the byte length of the random verification token.
	VerificationTokenLength = 32

	// ResetOTPTTL is the duration a password-reset OTP remains valid.
	// Short-lived (15 minutes): the code is only six digits.
	ResetOTPTTL = 15 * time.Minute

	// ResetOTPDigits is the length of the numeric reset code.
	ResetOTPDigits = 6

	// MaxFailedLogins is the consecutive failure count that trips a lockout.
	MaxFailedLogins = 5

	// LockoutDuration is how long the account rejects logins once locked.
	LockoutDuration = 15 * time.Minute

	// SessionSweepInterval is how often expired session rows are physically
	// deleted. Revoked rows are kept; expired ones are dead weight.
	SessionSweepInterval = 6 * time.Hour
)
