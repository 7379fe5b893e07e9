// Copyright (c) 2026 Maildeck. All rights reserved.

/*
Package account implements administrative user management.

It provides the operations a platform administrator uses to oversee accounts:
listing, inspection, moderation flags, and full account removal.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Security: Every operation is admin-gated; the handler consults the
    explicit authorization decision before touching the service.
  - Deletion: Account removal is an explicit multi-table transaction, not an
    implicit object-graph traversal.
*/
package account

import (
	"context"

	"github.com/maildeck/maildeck/internal/users/auth"
	"github.com/maildeck/maildeck/pkg/pagination"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for administrative
// account management.
type AccountRepository interface {
	/*
		List returns a page of accounts, newest first, optionally filtered by
		a username substring.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params
		  - usernameFilter: string (empty means no filter)

		Returns:
		  - []*auth.User: Page of accounts
		  - int: Total row count for pagination metadata
		  - error: Retrieval failures
	*/
	List(context context.Context, params pagination.Params, usernameFilter string) ([]*auth.User, int, error)

	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		UpdateFlags persists the moderation flags of an account.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changed flags)

		Returns:
		  - error: Storage or constraint failures
	*/
	UpdateFlags(context context.Context, user *auth.User) error

	/*
		DeleteCascade removes the account and all rows that reference it
		inside one transaction: sessions, folders, and authored emails go
		first, then the account row itself. The schema's ON DELETE CASCADE
		constraints sweep the email children (recipients, attachments,
		folder joins).

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Transaction failures (fully rolled back)
	*/
	DeleteCascade(context context.Context, userID string) error
}

// SessionRepository defines the session control an administrator action needs.
type SessionRepository interface {
	/*
		RevokeAll terminates every active session for a user, forcing a
		global sign-out across all devices.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Revocation failures
	*/
	RevokeAll(context context.Context, userID string) error
}

// # Field Identifiers

const (
	FieldUserID    = "user_id"
	FieldIsAdmin   = "is_admin"
	FieldIsBanned  = "is_banned"
	FieldIsFlagged = "is_flagged"
)
