// Copyright (c) 2026 Maildeck. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures (including unique violations)
	*/
	Create(context context.Context, user *User) error

	/*
		RecordFailedAttempt atomically increments the failed-login counter and,
		if the new value reaches the lockout threshold, stamps the lock time in
		the same statement. Concurrent wrong-password attempts therefore never
		lose an increment or disagree on the lock start.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int: The counter value after the increment
		  - *time.Time: The lock time, if the account is now locked
		  - error: Persistence failures
	*/
	RecordFailedAttempt(context context.Context, userID string) (int, *time.Time, error)

	/*
		ClearFailedLogins resets the failed-login counter and lock time.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	ClearFailedLogins(context context.Context, userID string) error

	/*
		UpdateMFASecret replaces the account's TOTP shared secret. An empty
		secret disables the second factor.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - secret: string

		Returns:
		  - error: Persistence failures
	*/
	UpdateMFASecret(context context.Context, userID, secret string) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {

	/*
		Create persists a new tracking session for an authenticated login.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the active session matching the given token hash.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		Revoke marks a specific session as permanently invalidated.

		Parameters:
		  - context: context.Context
		  - sessionID: string

		Returns:
		  - error: Persistence failures
	*/
	Revoke(context context.Context, sessionID string) error

	/*
		RevokeAll revokes every active session belonging to the userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	RevokeAll(context context.Context, userID string) error

	/*
		DeleteExpired physically removes sessions whose ExpiresAt is in the past.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) error
}

// # Volatile Data Access

// PendingMFARepository defines the contract for the pending-MFA marker: the
// volatile record that a password was verified but the second factor is
// still outstanding. No session exists while the marker does.
type PendingMFARepository interface {

	/*
		Set stores the pending marker for a userID with a limited duration.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, userID string, ttl time.Duration) error

	/*
		Exists reports whether an unexpired pending marker is present.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - bool: Marker presence
		  - error: Retrieval failures
	*/
	Exists(context context.Context, userID string) (bool, error)

	/*
		Delete removes the pending marker after a successful challenge.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, userID string) error
}
