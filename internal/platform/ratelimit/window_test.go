// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWindow(t *testing.T, limit int, period time.Duration) (*Window, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewWindow(client, "rl:test:", limit, period), server
}

func TestWindowAllowWithinLimit(t *testing.T) {
	window, _ := newTestWindow(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := window.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}
}

func TestWindowBlocksOverLimit(t *testing.T) {
	window, _ := newTestWindow(t, 2, time.Minute)
	ctx := context.Background()

	_, err := window.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	_, err = window.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)

	allowed, err := window.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, allowed, "third request must be rejected")
}

func TestWindowSubjectsAreIndependent(t *testing.T) {
	window, _ := newTestWindow(t, 1, time.Minute)
	ctx := context.Background()

	allowed, err := window.Allow(ctx, "10.0.0.3")
	require.NoError(t, err)
	assert.True(t, allowed)

	// A different subject has its own counter.
	allowed, err = window.Allow(ctx, "10.0.0.4")
	require.NoError(t, err)
	assert.True(t, allowed)

	// The first subject is now exhausted.
	allowed, err = window.Allow(ctx, "10.0.0.3")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestWindowExpiresAndReopens(t *testing.T) {
	window, server := newTestWindow(t, 1, time.Minute)
	ctx := context.Background()

	allowed, err := window.Allow(ctx, "10.0.0.5")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = window.Allow(ctx, "10.0.0.5")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Advance past the window boundary; the counter key must expire.
	server.FastForward(61 * time.Second)

	allowed, err = window.Allow(ctx, "10.0.0.5")
	require.NoError(t, err)
	assert.True(t, allowed, "a fresh window must reopen the limiter")
}

func TestWindowRemaining(t *testing.T) {
	window, _ := newTestWindow(t, 5, time.Minute)
	ctx := context.Background()

	remaining, err := window.Remaining(ctx, "10.0.0.6")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining, "untouched subject has the full budget")

	_, err = window.Allow(ctx, "10.0.0.6")
	require.NoError(t, err)
	_, err = window.Allow(ctx, "10.0.0.6")
	require.NoError(t, err)

	remaining, err = window.Remaining(ctx, "10.0.0.6")
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)
}

func TestWindowReset(t *testing.T) {
	window, _ := newTestWindow(t, 1, time.Minute)
	ctx := context.Background()

	_, err := window.Allow(ctx, "10.0.0.7")
	require.NoError(t, err)

	allowed, err := window.Allow(ctx, "10.0.0.7")
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, window.Reset(ctx, "10.0.0.7"))

	allowed, err = window.Allow(ctx, "10.0.0.7")
	require.NoError(t, err)
	assert.True(t, allowed, "reset must reopen the window")
}
