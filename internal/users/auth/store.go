// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given (normalized) email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures (Conflict on duplicate email)
	*/
	Create(context context.Context, user *User) error

	/*
		UpdateProfile persists changes to mutable profile fields.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	UpdateProfile(context context.Context, user *User) error

	/*
		MarkVerified updates the user's status to isverified = true.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	MarkVerified(context context.Context, userID string) error

	/*
		TokenVersion returns the account's current token version.

		Called on every authenticated request, so implementations should
		keep this to a single indexed lookup.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int64: Current token version
		  - error: Database retrieval failures
	*/
	TokenVersion(context context.Context, userID string) (int64, error)

	/*
		RecordLoginFailure increments the failure counter and, when the
		counter reaches maxFailures, stamps a lockout deadline — all in one
		atomic statement so concurrent failures can never lose an increment.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - maxFailures: int
		  - lockFor: time.Duration

		Returns:
		  - int: The failure count after the increment
		  - *time.Time: The lockout deadline, nil if not locked
		  - error: Persistence failures
	*/
	RecordLoginFailure(context context.Context, userID string, maxFailures int, lockFor time.Duration) (int, *time.Time, error)

	/*
		ResetLockoutAndTouchLogin clears the failure counter and lockout
		deadline and stamps lastloginat, in one statement.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	ResetLockoutAndTouchLogin(context context.Context, userID string) error

	/*
		UpdatePasswordAndBumpVersion replaces the password hash and
		increments tokenversion in the same statement, so there is no
		window where the new password coexists with old tokens.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePasswordAndBumpVersion(context context.Context, userID, newHash string) error

	/*
		BumpTokenVersion increments tokenversion, revoking every
		outstanding JWT for the account.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	BumpTokenVersion(context context.Context, userID string) error

	/*
		SetActive flips the account's isactive flag (admin deactivation
		and reactivation).

		Parameters:
		  - context: context.Context
		  - userID: string
		  - active: bool

		Returns:
		  - error: Persistence failures
	*/
	SetActive(context context.Context, userID string, active bool) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {

	/*
		Create persists a new tracking session for an authenticated login.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the active, unexpired session matching the
		given token hash.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: Database retrieval failures (NotFound when revoked or expired)
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		ListActiveForUser returns every active, unexpired session for the
		user, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []Session: Active sessions
		  - error: Database retrieval failures
	*/
	ListActiveForUser(context context.Context, userID string) ([]Session, error)

	/*
		RevokeByTokenHash marks the session holding the token hash as
		permanently invalidated. Revoking a session that does not exist or
		is already revoked is not an error (logout is idempotent).

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	RevokeByTokenHash(context context.Context, tokenHash string) error

	/*
		Revoke marks a specific session as permanently invalidated.

		Parameters:
		  - context: context.Context
		  - sessionID: string

		Returns:
		  - error: Persistence failures
	*/
	Revoke(context context.Context, sessionID string) error

	/*
		RevokeAll revokes every active session belonging to the userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	RevokeAll(context context.Context, userID string) error

	/*
		DeleteExpired physically removes sessions whose ExpiresAt is in the past.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) error
}

// # Volatile Data Access

// SecretRepository defines the contract for single-use, expiring secrets
// held in volatile storage (email verification tokens and reset OTPs).
//
// Callers store only a digest of the secret, never the plaintext, so a
// compromised cache cannot be replayed directly.
type SecretRepository interface {

	/*
		Store associates a secret digest with a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - digest: string (hex SHA-256 of the plaintext secret)
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Store(context context.Context, digest string, userID string, ttl time.Duration) error

	/*
		Consume atomically retrieves and deletes the userID bound to the
		digest. A second Consume of the same digest always misses, which is
		what makes the secret single-use even under concurrent requests.

		Parameters:
		  - context: context.Context
		  - digest: string

		Returns:
		  - string: UserID, empty when the digest is unknown or expired
		  - error: Retrieval failures
	*/
	Consume(context context.Context, digest string) (string, error)
}
