// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

/*
Package account implements profile management and administrative account
lifecycle operations.

Authentication flows live in the auth package; this package covers what
happens to an account after it exists — profile edits, and admin
deactivation/reactivation. Deactivation revokes every session and token so
a disabled account loses access immediately, not at token expiry.
*/
package account

import (
	"context"
	"fmt"

	"github.com/phamminhduc/bazario/internal/platform/activity"
	"github.com/phamminhduc/bazario/internal/users/auth"
)

// Service implements account profile and lifecycle use cases.
type Service struct {
	userRepository    auth.UserRepository
	sessionRepository auth.SessionRepository
	events            *activity.Dispatcher
}

// NewService constructs an account [Service].
func NewService(userRepo auth.UserRepository, sessionRepo auth.SessionRepository, events *activity.Dispatcher) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		events:            events,
	}
}

/*
Get returns an account by ID (admin view).

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: Hydrated entity
  - err: NotFound or retrieval failures
*/
func (service *Service) Get(context context.Context, userID string) (*auth.User, error) {
	return service.userRepository.FindByID(context, userID)
}

// UpdateProfileInput holds the caller-editable profile fields.
type UpdateProfileInput struct {
	DisplayName string
}

/*
UpdateProfile changes the caller's mutable profile fields.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: Updated entity
  - err: NotFound or persistence failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	user.DisplayName = input.DisplayName
	if err := service.userRepository.UpdateProfile(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_profile_failed: %w", err)
	}

	return user, nil
}

/*
Deactivate disables an account and revokes its access immediately.

Description: Flips isactive, clears every session, and bumps tokenversion —
an unexpired access token from before deactivation dies at the next
version-guarded request.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: NotFound or persistence failures
*/
func (service *Service) Deactivate(context context.Context, userID string) error {
	if _, err := service.userRepository.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.userRepository.SetActive(context, userID, false); err != nil {
		return fmt.Errorf("account_service_deactivate_failed: %w", err)
	}

	_ = service.sessionRepository.RevokeAll(context, userID)

	if err := service.userRepository.BumpTokenVersion(context, userID); err != nil {
		return fmt.Errorf("account_service_deactivate_bump_failed: %w", err)
	}

	service.events.Emit(activity.Event{
		EventType: activity.EventDeactivated,
		UserID:    userID,
		Success:   true,
	})

	return nil
}

/*
Reactivate re-enables a previously deactivated account.

Description: Sessions are NOT restored; the user logs in fresh.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: NotFound or persistence failures
*/
func (service *Service) Reactivate(context context.Context, userID string) error {
	if _, err := service.userRepository.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.userRepository.SetActive(context, userID, true); err != nil {
		return fmt.Errorf("account_service_reactivate_failed: %w", err)
	}

	service.events.Emit(activity.Event{
		EventType: activity.EventReactivated,
		UserID:    userID,
		Success:   true,
	})

	return nil
}
