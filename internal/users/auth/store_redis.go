// Copyright (c) 2026 Maildeck. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maildeck/maildeck/internal/platform/constants"
)

// # Pending MFA Repository

// RedisPendingMFARepository implements PendingMFARepository using Redis.
//
// The marker is keyed by user ID, so a fresh login attempt for the same
// account simply refreshes the existing challenge window.
type RedisPendingMFARepository struct {
	client *redis.Client
}

// NewPendingMFARepository creates a new Redis-backed PendingMFARepository.
func NewPendingMFARepository(client *redis.Client) *RedisPendingMFARepository {
	return &RedisPendingMFARepository{client: client}
}

/*
Set stores the pending marker for a userID with the given TTL.

Parameters:
  - context: context.Context
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisPendingMFARepository) Set(context context.Context, userID string, ttl time.Duration) error {

	// Use constants for key prefix
	key := constants.RedisPrefixMFAPending + userID

	// The value is irrelevant; presence of the key is the whole signal.
	if err := repository.client.Set(context, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_mfa_pending_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Exists reports whether an unexpired pending marker is present.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - bool: Marker presence
  - error: Connectivity errors
*/
func (repository *RedisPendingMFARepository) Exists(context context.Context, userID string) (bool, error) {

	// Use constants for key prefix
	key := constants.RedisPrefixMFAPending + userID

	// Probe the key; redis.Nil means the marker is absent or expired.
	_, err := repository.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_mfa_pending_get_failed: %w", err)
	}

	return true, nil
}

/*
Delete removes the pending marker.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisPendingMFARepository) Delete(context context.Context, userID string) error {

	// Use constants for key prefix
	key := constants.RedisPrefixMFAPending + userID

	// Delete the marker from Redis
	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_mfa_pending_delete_failed: %w", err)
	}

	// Return nil on success
	return nil
}
