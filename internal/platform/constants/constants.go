// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities, auth attempt windows, and IP tracking TTLs.
  - Security: JWT issuer and bearer scheme.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "bazario-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP at the outer edge.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// AuthAttemptLimit is the number of credential-bearing requests allowed per
	// client address within AuthAttemptWindow. Independent of the per-account
	// lockout counter.
	AuthAttemptLimit = 5

	// AuthAttemptWindow is the fixed window for AuthAttemptLimit.
	AuthAttemptWindow = 15 * time.Minute

	// ResetRequestLimit is the number of password-reset requests allowed per
	// client address within ResetRequestWindow.
	ResetRequestLimit = 3

	// ResetRequestWindow is the fixed window for ResetRequestLimit.
	ResetRequestWindow = 1 * time.Hour
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "bazario.app"

	// BearerScheme is the expected Authorization header scheme.
	BearerScheme = "Bearer"
)

// # Proxy / Tracing Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldSuccess = "success"
	FieldMessage = "message"
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaUsers = "users"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixVerifySecret stores sha256(verification token) -> account id.
	RedisPrefixVerifySecret = "auth:verify:"

	// RedisPrefixResetOTP stores sha256(email:code) -> account id.
	RedisPrefixResetOTP = "auth:reset_otp:"

	// RedisPrefixAuthWindow counts credential-bearing requests per client address.
	RedisPrefixAuthWindow = "rl:auth:"

	// RedisPrefixResetWindow counts password-reset requests per client address.
	RedisPrefixResetWindow = "rl:reset:"
)
