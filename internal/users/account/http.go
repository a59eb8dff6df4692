// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phamminhduc/bazario/internal/platform/middleware"
	requestutil "github.com/phamminhduc/bazario/internal/platform/request"
	"github.com/phamminhduc/bazario/internal/platform/respond"
	"github.com/phamminhduc/bazario/internal/platform/sec"
	"github.com/phamminhduc/bazario/internal/platform/validate"
	"github.com/phamminhduc/bazario/internal/users/auth"
)

// Handler implements account profile and admin lifecycle endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] for the account endpoints.
//
// # Endpoints
//   - PATCH /profile          : Update the caller's own profile (bearer).
//   - GET  /{id}              : Fetch any account (admin).
//   - POST /{id}/deactivate   : Disable an account and revoke access (admin).
//   - POST /{id}/reactivate   : Re-enable a disabled account (admin).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Patch("/profile", handler.updateProfile)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/{id}", handler.get)
		r.Post("/{id}/deactivate", handler.deactivate)
		r.Post("/{id}/reactivate", handler.reactivate)
	})

	return router
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

/*
UpdateProfile changes the caller's display name.

PATCH /api/v1/account/profile

Response:
  - 200: User: Updated profile
  - 400: ErrInvalidJSON: Validation failure
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldDisplayName, input.DisplayName).
		MaxLen(auth.FieldDisplayName, input.DisplayName, 100)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		DisplayName: input.DisplayName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Profile updated", map[string]any{auth.FieldUser: user})
}

/*
Get returns any account by ID.

GET /api/v1/account/{id}

Response:
  - 200: User: Account view
  - 403: ErrForbidden: Admin role required
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.Required("id", id).UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "OK", map[string]any{auth.FieldUser: user})
}

/*
Deactivate disables an account and revokes its access.

POST /api/v1/account/{id}/deactivate

Response:
  - 200: Success: Account disabled
  - 403: ErrForbidden: Admin role required
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) deactivate(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.Required("id", id).UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Deactivate(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Account deactivated", nil)
}

/*
Reactivate re-enables a previously disabled account.

POST /api/v1/account/{id}/reactivate

Response:
  - 200: Success: Account re-enabled
  - 403: ErrForbidden: Admin role required
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) reactivate(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.Required("id", id).UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Reactivate(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Account reactivated", nil)
}
