// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamminhduc/bazario/internal/platform/sec"
	"github.com/phamminhduc/bazario/internal/users/auth"
)

func newSecretTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

/*
TestSecretRepository_StoreAndConsume verifies the digest round trip and that
consumption is strictly single-use.
*/
func TestSecretRepository_StoreAndConsume(t *testing.T) {
	_, client := newSecretTestClient(t)
	repository := auth.NewVerificationSecretRepository(client)
	ctx := context.Background()

	digest := sec.HashToken("raw-verification-token")
	require.NoError(t, repository.Store(ctx, digest, "user-1", time.Hour))

	// 1. First consume returns the bound user.
	userID, err := repository.Consume(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// 2. Second consume of the same digest always misses.
	userID, err = repository.Consume(ctx, digest)
	require.NoError(t, err)
	assert.Empty(t, userID)
}

/*
TestSecretRepository_MissIsNotAnError verifies an unknown digest yields an
empty userID with a nil error — the caller owns the client-facing message.
*/
func TestSecretRepository_MissIsNotAnError(t *testing.T) {
	_, client := newSecretTestClient(t)
	repository := auth.NewResetOTPRepository(client)

	userID, err := repository.Consume(context.Background(), sec.HashToken("never-stored"))
	require.NoError(t, err)
	assert.Empty(t, userID)
}

/*
TestSecretRepository_TTLExpiry verifies a secret disappears once its TTL
elapses.
*/
func TestSecretRepository_TTLExpiry(t *testing.T) {
	server, client := newSecretTestClient(t)
	repository := auth.NewResetOTPRepository(client)
	ctx := context.Background()

	digest := sec.HashToken("user@example.com:123456")
	require.NoError(t, repository.Store(ctx, digest, "user-1", auth.ResetOTPTTL))

	server.FastForward(auth.ResetOTPTTL + time.Second)

	userID, err := repository.Consume(ctx, digest)
	require.NoError(t, err)
	assert.Empty(t, userID)
}

/*
TestSecretRepository_PrefixIsolation verifies the verification and OTP
stores never see each other's keys even for an identical digest.
*/
func TestSecretRepository_PrefixIsolation(t *testing.T) {
	_, client := newSecretTestClient(t)
	verify := auth.NewVerificationSecretRepository(client)
	otps := auth.NewResetOTPRepository(client)
	ctx := context.Background()

	digest := sec.HashToken("shared-digest-input")
	require.NoError(t, verify.Store(ctx, digest, "user-1", time.Hour))

	// The OTP store must not find the verification entry.
	userID, err := otps.Consume(ctx, digest)
	require.NoError(t, err)
	assert.Empty(t, userID)

	// The verification entry is still intact after the cross-store miss.
	userID, err = verify.Consume(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

/*
TestSecretRepository_OverwriteReplacesBinding verifies reissuing the same
digest replaces the previous binding and refreshes its TTL.
*/
func TestSecretRepository_OverwriteReplacesBinding(t *testing.T) {
	_, client := newSecretTestClient(t)
	repository := auth.NewVerificationSecretRepository(client)
	ctx := context.Background()

	digest := sec.HashToken("reissued-token")
	require.NoError(t, repository.Store(ctx, digest, "user-1", time.Hour))
	require.NoError(t, repository.Store(ctx, digest, "user-2", time.Hour))

	userID, err := repository.Consume(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, "user-2", userID)
}
