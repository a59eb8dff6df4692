// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phamminhduc/bazario/internal/platform/constants"
)

// # Single-Use Secret Repository
//
// RedisSecretRepository implements SecretRepository using Redis. Two
// instances with different prefixes back the verification-token and
// reset-OTP stores; the keys never collide.
//
// Only digests enter Redis. The plaintext secret exists in the outbound
// email and nowhere else.
type RedisSecretRepository struct {
	client *redis.Client
	prefix string
}

// NewVerificationSecretRepository creates the store for email verification tokens.
func NewVerificationSecretRepository(client *redis.Client) *RedisSecretRepository {
	return &RedisSecretRepository{client: client, prefix: constants.RedisPrefixVerifySecret}
}

// NewResetOTPRepository creates the store for password-reset OTPs.
func NewResetOTPRepository(client *redis.Client) *RedisSecretRepository {
	return &RedisSecretRepository{client: client, prefix: constants.RedisPrefixResetOTP}
}

/*
Store associates a secret digest with a userID for a limited duration.

Description: Issuing a new secret for the same digest key overwrites the old
entry; issuing for a different digest leaves older secrets to expire on
their own TTL.

Parameters:
  - context: context.Context
  - digest: string (hex SHA-256 of the plaintext secret)
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisSecretRepository) Store(context context.Context, digest string, userID string, ttl time.Duration) error {

	// Namespaced key, digest only — never the plaintext secret
	key := repository.prefix + digest

	// Set the digest -> userID binding with TTL
	if err := repository.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_secret_store_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Consume atomically retrieves and deletes the userID bound to the digest.

Description: GETDEL makes the read and the delete one command, so two
concurrent consumers of the same secret can never both win. A miss returns
an empty userID with a nil error; the caller owns the uniform "invalid or
expired" response.

Parameters:
  - context: context.Context
  - digest: string

Returns:
  - string: UserID, empty when the digest is unknown or expired
  - error: Connectivity errors only
*/
func (repository *RedisSecretRepository) Consume(context context.Context, digest string) (string, error) {

	// Namespaced key
	key := repository.prefix + digest

	// GETDEL: fetch and destroy in one atomic step
	userID, err := repository.client.GetDel(context, key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis_secret_consume_failed: %w", err)
	}

	// Return the userID
	return userID, nil
}
