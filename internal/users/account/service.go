// Copyright (c) 2026 Maildeck. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maildeck/maildeck/internal/users/auth"
	"github.com/maildeck/maildeck/pkg/pagination"
)

// # Service Layer

// Service orchestrates administrative account management.
//
// Authorization is NOT enforced here; the HTTP layer consults the explicit
// role decision before any service call, so the service can assume an
// administrator is acting.
type Service struct {
	accountRepository AccountRepository
	sessionRepository SessionRepository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(accountRepo AccountRepository, sessionRepo SessionRepository, logger *slog.Logger) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessionRepository: sessionRepo,
		logger:            logger,
	}
}

/*
ListUsers returns a page of accounts for the administration screen.

Parameters:
  - context: context.Context
  - params: pagination.Params
  - usernameFilter: string

Returns:
  - []*auth.User: Page of accounts
  - int: Total count
  - error: Retrieval failures
*/
func (service *Service) ListUsers(context context.Context, params pagination.Params, usernameFilter string) ([]*auth.User, int, error) {
	users, total, err := service.accountRepository.List(context, params, usernameFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return users, total, nil
}

/*
GetUser retrieves the full account record for inspection.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated account
  - error: Not found or execution failures
*/
func (service *Service) GetUser(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateFlagsInput defines the admin-mutable moderation flags.
// Nil fields are left untouched.
type UpdateFlagsInput struct {
	IsAdmin   *bool
	IsBanned  *bool
	IsFlagged *bool
}

/*
UpdateFlags applies a partial set of moderation-flag changes to an account.

Description: Fetches the existing account state, overrides provided flags,
and synchronizes the change to persistent storage. Banning an account also
terminates every active session, so a banned user cannot keep refreshing an
old session indefinitely.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateFlagsInput

Returns:
  - *auth.User: The updated account
  - error: Update or storage failures
*/
func (service *Service) UpdateFlags(context context.Context, userID string, input UpdateFlagsInput) (*auth.User, error) {

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	wasBanned := user.IsBanned

	// Apply delta updates
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}

	// Apply delta updates
	if input.IsBanned != nil {
		user.IsBanned = *input.IsBanned
	}

	// Apply delta updates
	if input.IsFlagged != nil {
		user.IsFlagged = *input.IsFlagged
	}

	// Persist changes
	if err := service.accountRepository.UpdateFlags(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_flags_failed: %w", err)
	}

	// Force global revocation of sessions when the account becomes banned
	if user.IsBanned && !wasBanned {
		_ = service.sessionRepository.RevokeAll(context, userID)
		service.logger.Warn("admin_user_sessions_revoked", slog.String("user_id", userID))
	}

	service.logger.Info("admin_user_flags_updated",
		slog.String("user_id", userID),
		slog.Bool("is_admin", user.IsAdmin),
		slog.Bool("is_banned", user.IsBanned),
		slog.Bool("is_flagged", user.IsFlagged),
	)

	return user, nil
}

/*
DeleteUser removes an account and everything it owns.

Description: Runs one transaction deleting sessions, folders, and authored
emails before the account row. Any failure rolls the whole operation back,
so a partially removed account can never exist.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Not found or transaction failures
*/
func (service *Service) DeleteUser(context context.Context, userID string) error {

	// Ensure the target exists so deletion reports NotFound cleanly.
	if _, err := service.accountRepository.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.accountRepository.DeleteCascade(context, userID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	service.logger.Warn("admin_user_deleted", slog.String("user_id", userID))

	return nil
}
