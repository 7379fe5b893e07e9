// Copyright (c) 2026 Maildeck. All rights reserved.

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maildeck/maildeck/internal/platform/apperr"
	"github.com/maildeck/maildeck/internal/users/auth"
	"github.com/maildeck/maildeck/pkg/pagination"
)

// # Account Repository

// PostgresAccountRepository implements the AccountRepository interface using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

/*
List returns a page of accounts, newest first.

Parameters:
  - context: context.Context
  - params: pagination.Params
  - usernameFilter: string

Returns:
  - []*auth.User: Page of accounts
  - int: Total count matching the filter
  - error: Retrieval failures
*/
func (repository *PostgresAccountRepository) List(context context.Context, params pagination.Params, usernameFilter string) ([]*auth.User, int, error) {
	const countQuery = `
		SELECT COUNT(*) FROM users.account
		WHERE ($1 = '' OR username ILIKE '%' || $1 || '%')`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, usernameFilter).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_count_failed: %w", err)
	}

	const listQuery = `
		SELECT id, username, email, passwordhash, isadmin, isbanned, isflagged,
		       failedloginattempts, locktime, mfasecret, createdat, updatedat
		FROM users.account
		WHERE ($1 = '' OR username ILIKE '%' || $1 || '%')
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, listQuery, usernameFilter, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user := &auth.User{}
		var mfaSecret *string

		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.IsAdmin,
			&user.IsBanned,
			&user.IsFlagged,
			&user.FailedLoginAttempts,
			&user.LockTime,
			&mfaSecret,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_account_repo_scan_failed: %w", err)
		}

		if mfaSecret != nil {
			user.MFASecret = *mfaSecret
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_rows_failed: %w", err)
	}

	return users, total, nil
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	const query = `
		SELECT id, username, email, passwordhash, isadmin, isbanned, isflagged,
		       failedloginattempts, locktime, mfasecret, createdat, updatedat
		FROM users.account
		WHERE id = $1`

	user := &auth.User{}
	var mfaSecret *string

	err := repository.pool.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.IsBanned,
		&user.IsFlagged,
		&user.FailedLoginAttempts,
		&user.LockTime,
		&mfaSecret,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_id_failed: %w", err)
	}

	if mfaSecret != nil {
		user.MFASecret = *mfaSecret
	}
	return user, nil
}

/*
UpdateFlags persists the moderation flags of an account.

Parameters:
  - context: context.Context
  - user: *auth.User

Returns:
  - error: Update failures
*/
func (repository *PostgresAccountRepository) UpdateFlags(context context.Context, user *auth.User) error {
	const query = `
		UPDATE users.account
		SET isadmin = $2, isbanned = $3, isflagged = $4, updatedat = $5
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.IsAdmin,
		user.IsBanned,
		user.IsFlagged,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_flags_failed: %w", err)
	}

	return nil
}

/*
DeleteCascade removes the account and all rows it owns in one transaction.

Description: Statement order makes the cascade explicit: sessions, folders,
and authored emails are deleted before the account row. The schema's
ON DELETE CASCADE constraints remove the email children (recipients,
attachments, email_folder joins) as those emails go. Failure at any step
rolls everything back.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Transaction failures
*/
func (repository *PostgresAccountRepository) DeleteCascade(context context.Context, userID string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	statements := []string{
		"DELETE FROM users.session WHERE userid = $1",
		"DELETE FROM mail.folder WHERE userid = $1",
		"DELETE FROM mail.recipient WHERE userid = $1",
		"DELETE FROM mail.email WHERE senderid = $1",
		"DELETE FROM users.account WHERE id = $1",
	}

	for _, statement := range statements {
		if _, err := transaction.Exec(context, statement, userID); err != nil {
			return fmt.Errorf("postgres_account_repo_cascade_failed: %w", err)
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_account_repo_commit_failed: %w", err)
	}

	return nil
}
