// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/indraneelk/taskhive/internal/platform/apperr"
	"github.com/indraneelk/taskhive/internal/platform/database/schema"
	"github.com/indraneelk/taskhive/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// selectColumns is the shared projection for account hydration.
func selectColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s",
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.DisplayName, schema.UserAccount.IsAdmin,
		schema.UserAccount.DiscordUserID, schema.UserAccount.DiscordVerified,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)
}

// scanUser hydrates a User from a single-row query.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	var discordUserID *string

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.DisplayName,
		&user.IsAdmin,
		&discordUserID,
		&user.DiscordVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if discordUserID != nil {
		user.DiscordUserID = *discordUserID
	}

	return user, nil
}

/*
FindByID retrieves a user record by its UUID.

Description: Performs a lookup on the account table, filtering out soft-deleted users.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		selectColumns(),
		schema.UserAccount.Table, schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE LOWER(%s) = LOWER($1) AND %s IS NULL`,
		selectColumns(),
		schema.UserAccount.Table, schema.UserAccount.Email, schema.UserAccount.DeletedAt,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found with this email")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByUsername retrieves a user record by their unique username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		selectColumns(),
		schema.UserAccount.Table, schema.UserAccount.Username, schema.UserAccount.DeletedAt,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found with this username")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

/*
FindByDiscordID retrieves the user bound to a Discord snowflake.

Description: Only verified bindings qualify. An unverified row means a link
code was redeemed but the binding was administratively suspended.

Parameters:
  - context: context.Context
  - discordUserID: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByDiscordID(context context.Context, discordUserID string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s = TRUE AND %s IS NULL`,
		selectColumns(),
		schema.UserAccount.Table, schema.UserAccount.DiscordUserID,
		schema.UserAccount.DiscordVerified, schema.UserAccount.DeletedAt,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, discordUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("No user is linked to this Discord account")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_discord_failed: %w", err)
	}

	return user, nil
}

/*
Create persists a new user record into the users.account table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.DisplayName, schema.UserAccount.IsAdmin,
		schema.UserAccount.DiscordUserID, schema.UserAccount.DiscordVerified,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	var discordUserID *string
	if user.DiscordUserID != "" {
		discordUserID = &user.DiscordUserID
	}

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.DisplayName,
		user.IsAdmin,
		discordUserID,
		user.DiscordVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
Update modifies the mutable profile metadata of a user.

Description: Syncs the Username, Email, and DisplayName fields while
refreshing the updatedat timestamp.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Persistence failures
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4
		WHERE %s = $5 AND %s IS NULL`,
		schema.UserAccount.Table,
		schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.DisplayName, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	user.UpdatedAt = time.Now()

	_, err := repository.pool.Exec(context, query,
		user.Username,
		user.Email,
		user.DisplayName,
		user.UpdatedAt,
		user.ID,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}

	return nil
}

/*
BindDiscord attaches a Discord snowflake to the account and marks it verified.

Description: The unique index on discorduserid rejects a snowflake already
bound to a different account; the caller maps that to a Conflict.

Parameters:
  - context: context.Context
  - userID: string
  - discordUserID: string

Returns:
  - error: Constraint violations or persistence failures
*/
func (repository *PostgresUserRepository) BindDiscord(context context.Context, userID, discordUserID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = TRUE, %s = $2
		WHERE %s = $3 AND %s IS NULL`,
		schema.UserAccount.Table,
		schema.UserAccount.DiscordUserID, schema.UserAccount.DiscordVerified,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	commandTag, err := repository.pool.Exec(context, query, discordUserID, time.Now(), userID)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Discord account is already linked")
		}
		return fmt.Errorf("postgres_user_repo_bind_discord_failed: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
UnbindDiscord clears the account's Discord binding.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresUserRepository) UnbindDiscord(context context.Context, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = NULL, %s = FALSE, %s = $1
		WHERE %s = $2 AND %s IS NULL`,
		schema.UserAccount.Table,
		schema.UserAccount.DiscordUserID, schema.UserAccount.DiscordVerified,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	commandTag, err := repository.pool.Exec(context, query, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_unbind_discord_failed: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
SoftDelete marks the account as deleted without removing the row.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresUserRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1
		WHERE %s = $2 AND %s IS NULL`,
		schema.UserAccount.Table,
		schema.UserAccount.DeletedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	commandTag, err := repository.pool.Exec(context, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_soft_delete_failed: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
