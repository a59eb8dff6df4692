// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

/*
HTTP delivery layer for user identity management.

It implements the gateway for the authentication lifecycle — from account
creation to session management and recovery.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Bearer tokens only; refresh tokens travel in request bodies,
    never in cookies.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phamminhduc/bazario/internal/platform/middleware"
	requestutil "github.com/phamminhduc/bazario/internal/platform/request"
	"github.com/phamminhduc/bazario/internal/platform/respond"
	"github.com/phamminhduc/bazario/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the user lifecycle entry points
// (Registration, Login, Verification, Reset, Refresh, Logout).
type Handler struct {
	authService *Service

	// Redis-backed fixed windows guarding the credential-bearing endpoints.
	authLimit  func(http.Handler) http.Handler
	resetLimit func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler] with its service dependency and the
// edge rate-limit middlewares for the sensitive endpoint groups.
func NewHandler(service *Service, authLimit, resetLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{
		authService: service,
		authLimit:   authLimit,
		resetLimit:  resetLimit,
	}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register               : Creates a new unverified account (rate-limited).
//   - POST /login                  : Authenticates and returns a token pair (rate-limited).
//   - GET  /verify-email           : Consumes the mailed verification token.
//   - POST /resend-verification    : Reissues the verification secret (rate-limited).
//   - POST /request-password-reset : Issues a reset OTP (rate-limited).
//   - POST /reset-password-otp     : Consumes the OTP, sets a new password (rate-limited).
//   - POST /refresh-token          : Exchanges a refresh token for a new access token.
//   - GET  /me                     : Returns the caller's public profile (bearer).
//   - GET  /sessions               : Lists the caller's active devices (bearer).
//   - DELETE /sessions/{id}        : Revokes one device session by ID (bearer).
//   - POST /logout                 : Revokes one refresh-token session (bearer).
//   - POST /logout-all             : Revokes all sessions and outstanding JWTs (bearer).
//   - POST /change-password        : Rotates the password, invalidates sessions (bearer).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Credential-bearing endpoints share the tight auth window.
	router.Group(func(r chi.Router) {
		r.Use(handler.authLimit)
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/resend-verification", handler.resendVerification)
	})

	// Reset endpoints get their own, slower window.
	router.Group(func(r chi.Router) {
		r.Use(handler.resetLimit)
		r.Post("/request-password-reset", handler.requestPasswordReset)
		r.Post("/reset-password-otp", handler.resetPasswordOTP)
	})

	// Unlimited public endpoints.
	router.Get("/verify-email", handler.verifyEmail)
	router.Post("/refresh-token", handler.refreshToken)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Get("/sessions", handler.sessions)
		r.Delete("/sessions/{id}", handler.revokeSession)
		r.Post("/logout", handler.logout)
		r.Post("/logout-all", handler.logoutAll)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DeviceLabel string `json:"device_label"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordOTPRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input (including full password strength), checks for
identity conflicts, and persists a new unverified user profile.

Request:
  - Body: registerRequest (Email, Password, DisplayName)

Response:
  - 201: User: Created user profile (never includes hashes or secrets)
  - 400: ErrInvalidJSON: Bad input or weak password
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password).
		MaxLen(FieldDisplayName, input.DisplayName, 100)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer,
		"Registration successful. Check your email to verify your account.",
		map[string]any{FieldUser: user},
	)
}

/*
Login authenticates a user and establishes a device session.

POST /api/v1/auth/login

Description: Verifies credentials through the lockout and verification
gates, then returns a bearer token pair.

Request:
  - Body: loginRequest (Email, Password, DeviceLabel)

Response:
  - 200: Session: Access + refresh tokens and user profile
  - 401: ErrUnauthorized: Invalid credentials or deactivated account
  - 403: ErrForbidden: Email not yet verified
  - 423: ErrLocked: Account temporarily locked
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	deviceLabel := input.DeviceLabel
	if deviceLabel == "" {
		deviceLabel = request.UserAgent()
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:       input.Email,
		Password:    input.Password,
		DeviceLabel: deviceLabel,
		IPAddress:   middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Login successful", map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
		FieldTokenType:    "Bearer",
		FieldExpiresIn:    int64(AccessTokenTTL / time.Second),
		FieldUser:         session.User,
	})
}

/*
VerifyEmail confirms a user's email ownership.

GET /api/v1/auth/verify-email?token=...&email=...

Description: Consumes the single-use verification token mailed at
registration and marks the account as verified.

Response:
  - 200: Success: Email verified
  - 400: ErrInvalidJSON: Missing query parameters
  - 401: ErrUnauthorized: Token invalid, expired, or already used
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	token := request.URL.Query().Get(FieldToken)
	email := request.URL.Query().Get(FieldEmail)

	validator := &validate.Validator{}
	validator.Required(FieldToken, token)
	validator.Required(FieldEmail, email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.VerifyEmail(request.Context(), token, email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Email verified successfully", nil)
}

/*
ResendVerification reissues the email verification secret.

POST /api/v1/auth/resend-verification

Description: Responds with the same message whether or not the email is
registered or already verified.

Request:
  - Body: emailRequest (Email)

Response:
  - 200: Success: Generic acknowledgement
  - 400: ErrInvalidJSON: Invalid email format
*/
func (handler *Handler) resendVerification(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResendVerification(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "If this email is registered and unverified, a new verification link has been sent.", nil)
}

/*
RequestPasswordReset initiates the forgot-password flow.

POST /api/v1/auth/request-password-reset

Description: Mails a single-use OTP if the account exists. The response is
identical either way.

Request:
  - Body: emailRequest (Email)

Response:
  - 200: Success: Generic acknowledgement (no existence leak)
  - 400: ErrInvalidJSON: Invalid email format
  - 500: ErrInternal: OTP email could not be delivered
*/
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "If this email is registered, a reset code has been sent.", nil)
}

/*
ResetPasswordOTP completes the forgot-password flow.

POST /api/v1/auth/reset-password-otp

Description: Validates the new password strength BEFORE consuming the OTP —
a weak password must not burn the single-use code. On success every session
and outstanding token dies.

Request:
  - Body: resetPasswordOTPRequest (Email, Code, NewPassword)

Response:
  - 200: Success: Password updated
  - 400: ErrInvalidJSON: Weak password or missing fields
  - 401: ErrUnauthorized: OTP invalid, expired, or already used
*/
func (handler *Handler) resetPasswordOTP(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordOTPRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldCode, input.Code).
		Required(FieldNewPassword, input.NewPassword).
		Password(FieldNewPassword, input.NewPassword)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPasswordWithOTP(request.Context(), input.Email, input.Code, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password has been reset successfully", nil)
}

/*
RefreshToken issues a new access token using a valid refresh token.

POST /api/v1/auth/refresh-token

Description: The refresh token is validated (signature, type, version pin,
live session) but NOT rotated; only a new access token is returned.

Request:
  - Body: refreshTokenRequest (RefreshToken)

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: ErrUnauthorized: Missing, invalid, or invalidated refresh token
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	var input refreshTokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "This field is required"))
		return
	}

	accessToken, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Token refreshed", map[string]any{
		FieldAccessToken: accessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int64(AccessTokenTTL / time.Second),
	})
}

/*
Me returns the authenticated caller's public profile.

GET /api/v1/auth/me

Response:
  - 200: User: Public account view
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "OK", map[string]any{FieldUser: user})
}

/*
Sessions lists the caller's active device sessions.

GET /api/v1/auth/sessions

Response:
  - 200: []Session: Active sessions, newest first
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) sessions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.authService.Sessions(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "OK", map[string]any{FieldSessions: sessions})
}

/*
RevokeSession revokes one of the caller's device sessions by its ID.

DELETE /api/v1/auth/sessions/{id}

Description: Companion to the device list — kills a session without needing
that device's refresh token.

Response:
  - 200: Success: Session revoked
  - 401: ErrUnauthorized: Authentication required
  - 404: ErrNotFound: Unknown session or owned by someone else
*/
func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.Required("id", id).UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RevokeSession(request.Context(), userID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Session revoked", nil)
}

/*
Logout revokes the session behind a single refresh token.

POST /api/v1/auth/logout

Description: Idempotent — logging out a token that is already dead still
returns success, and the body is optional: a bare POST simply ends with
success without touching any session.

Request:
  - Body: logoutRequest (RefreshToken), optional

Response:
  - 200: Success: Session terminated
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input logoutRequest
	if err := requestutil.DecodeJSONOptional(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.RefreshToken != "" {
		if err := handler.authService.Logout(request.Context(), userID, input.RefreshToken); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	respond.OK(writer, "Logged out successfully", nil)
}

/*
LogoutAll revokes every session and outstanding token for the caller.

POST /api/v1/auth/logout-all

Description: Idempotent — calling twice leaves the same end state: zero
active sessions.

Response:
  - 200: Success: All sessions terminated
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.LogoutAll(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Logged out from all devices", nil)
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/auth/change-password

Description: Verifies the current password, enforces the strength policy on
the new one, then rotates the hash and invalidates every session and token.

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success: Password changed, re-authentication required
  - 401: ErrUnauthorized: Current password incorrect
  - 400: ErrInvalidJSON: Weak password or validation failure
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		Password(FieldNewPassword, input.NewPassword)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		userID,
		input.CurrentPassword,
		input.NewPassword,
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password changed successfully. Please log in again.", nil)
}
