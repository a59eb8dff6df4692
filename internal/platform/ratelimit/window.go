// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

/*
Package ratelimit provides a Redis-backed fixed-window counter for the
sensitive authentication endpoints.

Unlike the in-process token bucket guarding the whole API, this limiter
shares its counters across server replicas: an attacker rotating between
instances still burns the same window. Counters are keyed by client address
and expire with the window, so the store is self-cleaning.
*/
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phamminhduc/bazario/internal/platform/apperr"
	"github.com/phamminhduc/bazario/internal/platform/ctxutil"
	"github.com/phamminhduc/bazario/internal/platform/middleware"
	"github.com/phamminhduc/bazario/internal/platform/respond"
)

// Window counts requests per subject inside a fixed time window.
type Window struct {
	client *redis.Client
	prefix string
	limit  int
	period time.Duration
}

// NewWindow builds a fixed-window limiter.
//
// # Parameters
//   - client: Shared Redis client.
//   - prefix: Key namespace, e.g. "rl:auth:".
//   - limit: Maximum requests per subject per window.
//   - period: Window length; also the TTL of the counter key.
func NewWindow(client *redis.Client, prefix string, limit int, period time.Duration) *Window {
	return &Window{
		client: client,
		prefix: prefix,
		limit:  limit,
		period: period,
	}
}

// Allow increments the subject's counter and reports whether the request
// falls inside the limit.
//
// The counter key is created on first increment and expires with the window.
// INCR + EXPIRE are close enough to atomic here: the worst interleaving
// grants one extra request, never an unexpiring key, because EXPIRE is
// retried whenever the key has no TTL.
func (w *Window) Allow(ctx context.Context, subject string) (bool, error) {
	key := w.prefix + subject

	count, err := w.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit: incr failed: %w", err)
	}

	// Stamp the TTL on the first hit of a fresh window.
	if count == 1 {
		if err := w.client.Expire(ctx, key, w.period).Err(); err != nil {
			return false, fmt.Errorf("ratelimit: expire failed: %w", err)
		}
	} else if count > 1 {
		// Heal keys that lost their TTL (e.g. crash between INCR and EXPIRE).
		ttl, err := w.client.TTL(ctx, key).Result()
		if err == nil && ttl < 0 {
			_ = w.client.Expire(ctx, key, w.period).Err()
		}
	}

	return count <= int64(w.limit), nil
}

// Remaining reports how many requests the subject has left in the current window.
func (w *Window) Remaining(ctx context.Context, subject string) (int, error) {
	count, err := w.client.Get(ctx, w.prefix+subject).Int64()
	if err != nil {
		if err == redis.Nil {
			return w.limit, nil
		}
		return 0, fmt.Errorf("ratelimit: get failed: %w", err)
	}

	remaining := w.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Reset clears the subject's counter, reopening the window immediately.
func (w *Window) Reset(ctx context.Context, subject string) error {
	if err := w.client.Del(ctx, w.prefix+subject).Err(); err != nil {
		return fmt.Errorf("ratelimit: reset failed: %w", err)
	}
	return nil
}

// Middleware guards an endpoint group with this window, keyed by client IP.
//
// Redis failures fail open with a warning: a degraded cache must not take
// login down with it. The per-account lockout still holds the line.
func (w *Window) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			subject := middleware.RealIP(request)

			allowed, err := w.Allow(request.Context(), subject)
			if err != nil {
				logger := ctxutil.GetLogger(request.Context())
				logger.WarnContext(request.Context(), "rate_limit_degraded",
					slog.String("prefix", w.prefix),
					slog.Any("error", err),
				)
				next.ServeHTTP(writer, request)
				return
			}

			if !allowed {
				respond.Error(writer, request, apperr.RateLimited(int(w.period.Seconds())))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
