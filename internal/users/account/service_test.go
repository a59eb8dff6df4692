// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package account_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamminhduc/bazario/internal/platform/activity"
	"github.com/phamminhduc/bazario/internal/platform/apperr"
	"github.com/phamminhduc/bazario/internal/platform/sec"
	"github.com/phamminhduc/bazario/internal/users/account"
	"github.com/phamminhduc/bazario/internal/users/auth"
)

// memoryUserStore is a minimal in-memory UserRepository covering only the
// paths the account service touches.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func (s *memoryUserStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	clone := *user
	return &clone, nil
}

func (s *memoryUserStore) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, apperr.NotFound("Account")
}

func (s *memoryUserStore) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memoryUserStore) UpdateProfile(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return apperr.NotFound("Account")
	}
	stored.DisplayName = user.DisplayName
	return nil
}

func (s *memoryUserStore) MarkVerified(context.Context, string) error { return nil }

func (s *memoryUserStore) TokenVersion(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return 0, apperr.NotFound("Account")
	}
	return user.TokenVersion, nil
}

func (s *memoryUserStore) RecordLoginFailure(context.Context, string, int, time.Duration) (int, *time.Time, error) {
	return 0, nil, nil
}

func (s *memoryUserStore) ResetLockoutAndTouchLogin(context.Context, string) error { return nil }

func (s *memoryUserStore) UpdatePasswordAndBumpVersion(context.Context, string, string) error {
	return nil
}

func (s *memoryUserStore) BumpTokenVersion(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.TokenVersion++
	}
	return nil
}

func (s *memoryUserStore) SetActive(_ context.Context, userID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return apperr.NotFound("Account")
	}
	user.IsActive = active
	return nil
}

// memorySessionStore records revocations; only RevokeAll matters here.
type memorySessionStore struct {
	mu         sync.Mutex
	revokedFor []string
}

func (s *memorySessionStore) Create(context.Context, *auth.Session) error { return nil }

func (s *memorySessionStore) FindByTokenHash(context.Context, string) (*auth.Session, error) {
	return nil, apperr.NotFound("Session")
}

func (s *memorySessionStore) ListActiveForUser(context.Context, string) ([]auth.Session, error) {
	return nil, nil
}

func (s *memorySessionStore) RevokeByTokenHash(context.Context, string) error { return nil }
func (s *memorySessionStore) Revoke(context.Context, string) error            { return nil }

func (s *memorySessionStore) RevokeAll(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokedFor = append(s.revokedFor, userID)
	return nil
}

func (s *memorySessionStore) DeleteExpired(context.Context) error { return nil }

func newAccountFixture(t *testing.T) (*account.Service, *memoryUserStore, *memorySessionStore) {
	t.Helper()

	users := &memoryUserStore{users: map[string]*auth.User{}}
	sessions := &memorySessionStore{}

	events := activity.NewDispatcher(activity.NoOpSink{}, 16)
	t.Cleanup(events.Close)

	return account.NewService(users, sessions, events), users, sessions
}

/*
TestUpdateProfile verifies the display name change persists and the updated
entity is returned.
*/
func TestUpdateProfile(t *testing.T) {
	service, users, _ := newAccountFixture(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &auth.User{ID: "user-1", DisplayName: "Before", Role: sec.RoleUser, IsActive: true}))

	updated, err := service.UpdateProfile(ctx, "user-1", account.UpdateProfileInput{DisplayName: "After"})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.DisplayName)

	stored, err := users.FindByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "After", stored.DisplayName)
}

/*
TestUpdateProfile_UnknownAccount verifies a missing account surfaces as 404.
*/
func TestUpdateProfile_UnknownAccount(t *testing.T) {
	service, _, _ := newAccountFixture(t)

	_, err := service.UpdateProfile(context.Background(), "ghost", account.UpdateProfileInput{DisplayName: "x"})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "NOT_FOUND", appError.Code)
}

/*
TestDeactivate verifies the account is disabled, its sessions revoked, and
its token version bumped so unexpired tokens die immediately.
*/
func TestDeactivate(t *testing.T) {
	service, users, sessions := newAccountFixture(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &auth.User{ID: "user-1", IsActive: true}))

	require.NoError(t, service.Deactivate(ctx, "user-1"))

	stored, err := users.FindByID(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, int64(1), stored.TokenVersion)
	assert.Contains(t, sessions.revokedFor, "user-1")
}

/*
TestReactivate verifies the flag flips back without touching the token
version — the user simply logs in fresh.
*/
func TestReactivate(t *testing.T) {
	service, users, _ := newAccountFixture(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &auth.User{ID: "user-1", IsActive: false, TokenVersion: 4}))

	require.NoError(t, service.Reactivate(ctx, "user-1"))

	stored, err := users.FindByID(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.Equal(t, int64(4), stored.TokenVersion)
}
