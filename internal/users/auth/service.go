// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

/*
Auth service: the core identity and access management (IAM) orchestration.

It handles everything from user registration and secure password hashing to
session lifecycle management via JWT access/refresh tokens, account lockout,
and single-use email secrets held in Redis.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Reset, Refresh).
  - Repository: Abstracted interfaces for Postgres (Users, Sessions) and
    Redis (single-use secrets).
  - Security: Bcrypt password hashing, HS256-signed JWTs, SHA-256 at-rest
    hashing for every opaque secret.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/phamminhduc/bazario/internal/platform/activity"
	"github.com/phamminhduc/bazario/internal/platform/apperr"
	"github.com/phamminhduc/bazario/internal/platform/ctxutil"
	"github.com/phamminhduc/bazario/internal/platform/mailer"
	"github.com/phamminhduc/bazario/internal/platform/sec"
	"github.com/phamminhduc/bazario/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for minting and checking signed tokens.
type TokenProvider interface {
	// IssueAccessToken creates a signed, short-lived JWT for API calls.
	IssueAccessToken(userID, role string, tokenVersion int64, timeToLive time.Duration) (string, error)

	// IssueRefreshToken creates a signed, long-lived JWT carrying typ=refresh.
	IssueRefreshToken(userID string, tokenVersion int64, timeToLive time.Duration) (string, error)

	// VerifyRefreshToken checks signature, expiry, and typ=refresh.
	// Access tokens presented here must fail.
	VerifyRefreshToken(tokenString string) (*sec.AuthClaims, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, lockout,
// or token logic must be reviewed by the security team.
type Service struct {
	userRepository      UserRepository
	sessionRepository   SessionRepository
	verificationSecrets SecretRepository
	resetOTPs           SecretRepository
	tokenProvider       TokenProvider
	mail                mailer.Mailer
	events              *activity.Dispatcher
	publicBaseURL       string
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	verifySecrets SecretRepository,
	resetOTPs SecretRepository,
	tokenProv TokenProvider,
	mail mailer.Mailer,
	events *activity.Dispatcher,
	publicBaseURL string,
) *Service {
	return &Service{
		userRepository:      userRepo,
		sessionRepository:   sessionRepo,
		verificationSecrets: verifySecrets,
		resetOTPs:           resetOTPs,
		tokenProvider:       tokenProv,
		mail:                mail,
		events:              events,
		publicBaseURL:       publicBaseURL,
	}
}

// TokenVersion exposes the account's current token version for the
// middleware version guard.
func (service *Service) TokenVersion(context context.Context, userID string) (int64, error) {
	return service.userRepository.TokenVersion(context, userID)
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member. The account starts unverified
with tokenVersion=0; a verification secret is issued and mailed. A mail
transport failure here is logged and swallowed — the user can always ask for
a resend.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (if email exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Fold the email once; every later lookup uses the same form.
	email := sec.NormalizeEmail(input.Email)

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  input.DisplayName,
		Role:         sec.RoleUser,
		IsActive:     true,
		IsVerified:   false,
		TokenVersion: 0,
	}

	// Persist the user to the database. The unique index on email is the
	// real duplicate guard; the lookup above is just a fast path.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	// Issue and mail the verification secret.
	if err := service.issueVerification(context, user); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "verification_email_failed",
			"user_id", user.ID, "error", err.Error())
	}

	service.events.Emit(activity.Event{
		EventType: activity.EventRegistered,
		UserID:    user.ID,
		Email:     user.Email,
		Success:   true,
	})

	return user, nil
}

// issueVerification creates a fresh verification token, stores its digest,
// and mails the raw token as a link.
func (service *Service) issueVerification(context context.Context, user *User) error {
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err != nil {
		return fmt.Errorf("auth_service_generate_verification_failed: %w", err)
	}

	digest := sec.HashToken(token)
	if err := service.verificationSecrets.Store(context, digest, user.ID, VerificationTokenTTL); err != nil {
		return fmt.Errorf("auth_service_store_verification_failed: %w", err)
	}

	link := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s&email=%s",
		service.publicBaseURL, url.QueryEscape(token), url.QueryEscape(user.Email))

	return service.mail.Send(context, mailer.Message{
		To:      user.Email,
		Subject: "Verify your Bazario account",
		Text: fmt.Sprintf(
			"Welcome to Bazario!\n\nPlease confirm your email address by opening the link below within 24 hours:\n\n%s\n\nIf you did not create this account, ignore this message.",
			link),
	})
}

/*
ResendVerification reissues the verification secret for an unverified account.

Description: Responds identically whether the email exists, is already
verified, or is unknown — resend is an enumeration surface like reset.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: Internal failures only; "no such account" is silent
*/
func (service *Service) ResendVerification(context context.Context, email string) error {
	user, err := service.userRepository.FindByEmail(context, sec.NormalizeEmail(email))
	if err != nil || user.IsVerified {
		return nil
	}

	if err := service.issueVerification(context, user); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "verification_email_failed",
			"user_id", user.ID, "error", err.Error())
	}

	return nil
}

/*
VerifyEmail confirms a user's email address using the mailed token.

Description: Hashes the inbound token, consumes the stored digest (single
use), and cross-checks that the secret belongs to the account with the given
email. Unknown, expired, reused, and mismatched all collapse into one
undifferentiated error.

Parameters:
  - context: context.Context
  - token: string (raw token from the emailed link)
  - email: string

Returns:
  - err: Unauthorized ("invalid or expired") or database errors
*/
func (service *Service) VerifyEmail(context context.Context, token, email string) error {
	invalid := apperr.Unauthorized("Verification link is invalid or expired")

	userID, err := service.verificationSecrets.Consume(context, sec.HashToken(token))
	if err != nil {
		return fmt.Errorf("auth_service_verify_consume_failed: %w", err)
	}
	if userID == "" {
		return invalid
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return invalid
	}

	// The token must belong to the claimed address.
	if user.Email != sec.NormalizeEmail(email) {
		return invalid
	}

	if user.IsVerified {
		return nil
	}

	if err := service.userRepository.MarkVerified(context, user.ID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	service.events.Emit(activity.Event{
		EventType: activity.EventVerified,
		UserID:    user.ID,
		Email:     user.Email,
		Success:   true,
	})

	return nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email       string
	Password    string
	DeviceLabel string
	IPAddress   string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: The gate order is deliberate — unknown account and wrong
password both surface as a generic 401 so responses don't reveal which
emails exist; a locked account fails with 423 BEFORE the password is
checked, so response timing while locked reveals nothing about credential
correctness.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: Unauthorized (401), Locked (423), Forbidden (403), or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	invalidCredentials := apperr.Unauthorized("Invalid login credentials")

	// 1. Lookup. Generic message to prevent enumeration.
	user, err := service.userRepository.FindByEmail(context, sec.NormalizeEmail(input.Email))
	if err != nil {
		return nil, invalidCredentials
	}

	// 2. Lockout gate — checked before the password, never after.
	if user.IsLocked(time.Now()) {
		return nil, apperr.Locked("Account temporarily locked due to repeated failed logins. Try again later.")
	}

	// 3. Deactivated accounts fail like bad credentials.
	if !user.IsActive {
		return nil, invalidCredentials
	}

	// 4. Unverified accounts get a distinct, actionable message.
	if !user.IsVerified {
		return nil, apperr.Forbidden("Please verify your email address before logging in")
	}

	// 5. Constant-time password comparison via bcrypt.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		count, lockUntil, recordErr := service.userRepository.RecordLoginFailure(
			context, user.ID, MaxFailedLogins, LockoutDuration)
		if recordErr != nil {
			return nil, fmt.Errorf("auth_service_record_failure_failed: %w", recordErr)
		}

		service.events.Emit(activity.Event{
			EventType: activity.EventLoginFailed,
			UserID:    user.ID,
			Email:     user.Email,
			IP:        input.IPAddress,
			Metadata:  map[string]string{"failed_count": fmt.Sprintf("%d", count)},
		})

		if lockUntil != nil && time.Now().Before(*lockUntil) {
			service.events.Emit(activity.Event{
				EventType: activity.EventAccountLocked,
				UserID:    user.ID,
				Email:     user.Email,
				IP:        input.IPAddress,
			})
		}

		return nil, invalidCredentials
	}

	// 6. Success: clear lockout bookkeeping and stamp the login time.
	if err := service.userRepository.ResetLockoutAndTouchLogin(context, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_reset_lockout_failed: %w", err)
	}

	// 7. Mint the token pair, both pinned to the current tokenVersion.
	accessToken, err := service.tokenProvider.IssueAccessToken(user.ID, string(user.Role), user.TokenVersion, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.IssueRefreshToken(user.ID, user.TokenVersion, RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// 8. Register the device session. Only the hash of the refresh token
	// is persisted.
	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:          uuid.New(),
		UserID:      user.ID,
		TokenHash:   sec.HashToken(refreshToken),
		DeviceLabel: input.DeviceLabel,
		IPAddress:   input.IPAddress,
		ExpiresAt:   expiresAt,
		IsRevoked:   false,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	service.events.Emit(activity.Event{
		EventType: activity.EventLoginSucceeded,
		UserID:    user.ID,
		Email:     user.Email,
		SessionID: session.ID,
		IP:        input.IPAddress,
		Success:   true,
	})

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

// # Session Management

/*
Refresh exchanges a valid refresh token for a new access token.

Description: The refresh token itself is NOT rotated — it remains valid
until its own expiry or explicit logout. Only a fresh access token is
minted, re-reading role and tokenVersion from the account so revocations
and role changes take effect immediately.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - string: New access token
  - err: Unauthorized or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (string, error) {
	invalid := apperr.Unauthorized("Invalid or expired refresh token")

	// 1. Signature, expiry, and typ=refresh. An access token stops here.
	claims, err := service.tokenProvider.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", invalid
	}

	// 2. The account must still exist and be active.
	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil || !user.IsActive {
		return "", invalid
	}

	// 3. Version pin: a stale version means the account revoked everything.
	if claims.TokenVersion != user.TokenVersion {
		return "", apperr.Unauthorized("Session has been invalidated, please log in again")
	}

	// 4. The session behind this exact token must still be live.
	if _, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(refreshToken)); err != nil {
		return "", invalid
	}

	// 5. Mint the new access token only.
	accessToken, err := service.tokenProvider.IssueAccessToken(user.ID, string(user.Role), user.TokenVersion, AccessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	return accessToken, nil
}

/*
Logout revokes the single session holding the given refresh token.

Description: Idempotent — an unknown, expired, or already revoked token is
treated as a successful logout.

Parameters:
  - context: context.Context
  - userID: string (authenticated caller, for the activity trail)
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, userID, refreshToken string) error {
	if err := service.sessionRepository.RevokeByTokenHash(context, sec.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.events.Emit(activity.Event{
		EventType: activity.EventLoggedOut,
		UserID:    userID,
		Success:   true,
	})

	return nil
}

/*
LogoutAll revokes every session and every outstanding JWT for the account.

Description: Clears the session list and bumps tokenVersion in the same
flow, so even unexpired access tokens die with the sessions.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Revocation failures
*/
func (service *Service) LogoutAll(context context.Context, userID string) error {
	if err := service.sessionRepository.RevokeAll(context, userID); err != nil {
		return fmt.Errorf("auth_service_logout_all_failed: %w", err)
	}

	if err := service.userRepository.BumpTokenVersion(context, userID); err != nil {
		return fmt.Errorf("auth_service_logout_all_bump_failed: %w", err)
	}

	service.events.Emit(activity.Event{
		EventType: activity.EventLoggedOutAll,
		UserID:    userID,
		Success:   true,
	})

	return nil
}

/*
RevokeSession revokes one of the caller's device sessions by its ID.

Description: Backs the device-list view — the caller picks a device and
kills it without needing that device's refresh token. The session must
belong to the caller; an unknown ID or someone else's session fails with
NotFound.

Parameters:
  - context: context.Context
  - userID: string (authenticated caller)
  - sessionID: string

Returns:
  - err: NotFound or revocation failures
*/
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {
	sessions, err := service.sessionRepository.ListActiveForUser(context, userID)
	if err != nil {
		return fmt.Errorf("auth_service_revoke_session_list_failed: %w", err)
	}

	for _, session := range sessions {
		if session.ID != sessionID {
			continue
		}

		if err := service.sessionRepository.Revoke(context, sessionID); err != nil {
			return fmt.Errorf("auth_service_revoke_session_failed: %w", err)
		}

		service.events.Emit(activity.Event{
			EventType: activity.EventLoggedOut,
			UserID:    userID,
			SessionID: sessionID,
			Success:   true,
		})

		return nil
	}

	return apperr.NotFound("Session")
}

/*
Sessions lists the caller's active device sessions, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []Session: Active sessions (token hashes never serialized)
  - err: Retrieval failures
*/
func (service *Service) Sessions(context context.Context, userID string) ([]Session, error) {
	return service.sessionRepository.ListActiveForUser(context, userID)
}

/*
Me returns the caller's account for the public profile view.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - err: NotFound or retrieval failures
*/
func (service *Service) Me(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

// # Password Lifecycle

/*
ChangePassword allows an authenticated user to rotate their credentials.

Description: Verifies the current password, swaps the hash and bumps
tokenVersion atomically, then clears every session. The client must
re-authenticate on all devices.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string (strength already validated at the transport layer)

Returns:
  - err: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {

	// Fetch user by ID
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Hash swap + version bump in one statement: no window where old tokens
	// outlive the old password.
	if err := service.userRepository.UpdatePasswordAndBumpVersion(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	// Security Side Effect: every device must log in again. The version bump
	// above already killed every outstanding token; a failed revoke here only
	// leaves stale rows in the device list, so log and continue.
	if err := service.sessionRepository.RevokeAll(context, userID); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "session_revoke_all_failed",
			"user_id", userID, "error", err.Error())
	}

	service.events.Emit(activity.Event{
		EventType: activity.EventPasswordChanged,
		UserID:    userID,
		Success:   true,
	})

	return nil
}

/*
RequestPasswordReset initiates the forgot-password flow with a mailed OTP.

Description: Responds identically whether or not the email exists. Unlike
the verification mail, a failed OTP dispatch IS fatal — the user has no
other path to the code.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: Internal failures (including mail transport); never NotFound
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	normalized := sec.NormalizeEmail(email)

	// NOTE: No error when the email doesn't exist — prevents enumeration.
	user, err := service.userRepository.FindByEmail(context, normalized)
	if err != nil {
		return nil
	}

	code, err := sec.GenerateOTP(ResetOTPDigits)
	if err != nil {
		return fmt.Errorf("auth_service_generate_otp_failed: %w", err)
	}

	// The digest binds the code to the email, so a code issued for one
	// account can never reset another.
	digest := sec.HashToken(normalized + ":" + code)
	if err := service.resetOTPs.Store(context, digest, user.ID, ResetOTPTTL); err != nil {
		return fmt.Errorf("auth_service_store_otp_failed: %w", err)
	}

	err = service.mail.Send(context, mailer.Message{
		To:      user.Email,
		Subject: "Your Bazario password reset code",
		Text: fmt.Sprintf(
			"Your password reset code is: %s\n\nIt expires in %d minutes. If you did not request a reset, you can safely ignore this message.",
			code, int(ResetOTPTTL.Minutes())),
	})
	if err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_reset_mail_failed: %w", err))
	}

	return nil
}

/*
ResetPasswordWithOTP completes the forgot-password flow.

Description: Consumes the OTP digest (single use, atomic), swaps the
password hash, bumps tokenVersion, and clears every session. Unknown,
expired, reused, and wrong-email codes are indistinguishable.

Parameters:
  - context: context.Context
  - email: string
  - code: string
  - newPassword: string (strength already validated at the transport layer)

Returns:
  - err: Unauthorized ("invalid or expired OTP") or storage failures
*/
func (service *Service) ResetPasswordWithOTP(context context.Context, email, code, newPassword string) error {
	normalized := sec.NormalizeEmail(email)

	userID, err := service.resetOTPs.Consume(context, sec.HashToken(normalized+":"+code))
	if err != nil {
		return fmt.Errorf("auth_service_otp_consume_failed: %w", err)
	}
	if userID == "" {
		return apperr.Unauthorized("Reset code is invalid or expired")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePasswordAndBumpVersion(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security Cleanup: revoke EVERY active session for this user. The
	// version bump already invalidated the tokens; a failed revoke only
	// leaves stale rows in the device list, so log and continue.
	if err := service.sessionRepository.RevokeAll(context, userID); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "session_revoke_all_failed",
			"user_id", userID, "error", err.Error())
	}

	service.events.Emit(activity.Event{
		EventType: activity.EventPasswordReset,
		UserID:    userID,
		Email:     normalized,
		Success:   true,
	})

	return nil
}
