// Copyright (c) 2026 Maildeck. All rights reserved.

package auth

import "time"

// # Authentication Constraints

const (
	// MaxFailedLoginAttempts is the number of consecutive wrong passwords
	// that locks an account.
	MaxFailedLoginAttempts = 5

	// LockoutDuration is how long an account stays locked once the
	// threshold is reached.
	LockoutDuration = 15 * time.Minute

	// MFAPendingTTL is how long a password-verified login may wait for the
	// second factor before the challenge expires.
	MFAPendingTTL = 5 * time.Minute

	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a session/refresh token remains valid.
	// Long-lived (30 days) to provide a good user experience.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random secure token.
	RefreshTokenLength = 32

	// SessionCleanupInterval is how often expired session rows are purged
	// from storage.
	SessionCleanupInterval = 1 * time.Hour
)
