// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/indraneelk/taskhive/internal/platform/apperr"
	"github.com/indraneelk/taskhive/internal/platform/database/schema"
)

// # Link Code Repository

// PostgresLinkCodeRepository implements the LinkCodeRepository interface using pgx.
type PostgresLinkCodeRepository struct {
	pool *pgxpool.Pool
}

// NewLinkCodeRepository creates a new PostgreSQL implementation of the LinkCodeRepository.
func NewLinkCodeRepository(pool *pgxpool.Pool) *PostgresLinkCodeRepository {
	return &PostgresLinkCodeRepository{pool: pool}
}

// scanLinkCode hydrates a LinkCode from a single-row query.
func scanLinkCode(row pgx.Row) (*LinkCode, error) {
	code := &LinkCode{}
	var discordUserID *string

	err := row.Scan(
		&code.ID,
		&code.UserID,
		&code.CodeHash,
		&discordUserID,
		&code.IsUsed,
		&code.IssuedAt,
		&code.ExpiresAt,
		&code.UsedAt,
	)
	if err != nil {
		return nil, err
	}

	if discordUserID != nil {
		code.DiscordUserID = *discordUserID
	}

	return code, nil
}

/*
Create persists a new link code record into the users.linkcode table.

Parameters:
  - context: context.Context
  - code: *LinkCode (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresLinkCodeRepository) Create(context context.Context, code *LinkCode) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.UserLinkCode.Table,
		schema.UserLinkCode.ID, schema.UserLinkCode.UserID, schema.UserLinkCode.CodeHash,
		schema.UserLinkCode.IsUsed, schema.UserLinkCode.IssuedAt, schema.UserLinkCode.ExpiresAt,
	)

	_, err := repository.pool.Exec(context, query,
		code.ID,
		code.UserID,
		code.CodeHash,
		code.IsUsed,
		code.IssuedAt,
		code.ExpiresAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_linkcode_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByCodeHash retrieves a link code by its hash.

Parameters:
  - context: context.Context
  - codeHash: string

Returns:
  - *LinkCode: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresLinkCodeRepository) FindByCodeHash(context context.Context, codeHash string) (*LinkCode, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.UserLinkCode.ID, schema.UserLinkCode.UserID, schema.UserLinkCode.CodeHash,
		schema.UserLinkCode.DiscordUserID, schema.UserLinkCode.IsUsed,
		schema.UserLinkCode.IssuedAt, schema.UserLinkCode.ExpiresAt, schema.UserLinkCode.UsedAt,
		schema.UserLinkCode.Table, schema.UserLinkCode.CodeHash,
	)

	code, err := scanLinkCode(repository.pool.QueryRow(context, query, codeHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Link code")
		}
		return nil, fmt.Errorf("postgres_linkcode_repo_find_by_hash_failed: %w", err)
	}

	return code, nil
}

/*
FindLatestByUserID retrieves the most recently issued code for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *LinkCode: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresLinkCodeRepository) FindLatestByUserID(context context.Context, userID string) (*LinkCode, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
		LIMIT 1`,
		schema.UserLinkCode.ID, schema.UserLinkCode.UserID, schema.UserLinkCode.CodeHash,
		schema.UserLinkCode.DiscordUserID, schema.UserLinkCode.IsUsed,
		schema.UserLinkCode.IssuedAt, schema.UserLinkCode.ExpiresAt, schema.UserLinkCode.UsedAt,
		schema.UserLinkCode.Table, schema.UserLinkCode.UserID, schema.UserLinkCode.IssuedAt,
	)

	code, err := scanLinkCode(repository.pool.QueryRow(context, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Link code")
		}
		return nil, fmt.Errorf("postgres_linkcode_repo_find_latest_failed: %w", err)
	}

	return code, nil
}

/*
InvalidatePending force-expires every redeemable code of a user.

Parameters:
  - context: context.Context
  - userID: string
  - now: time.Time

Returns:
  - error: Persistence failures
*/
func (repository *PostgresLinkCodeRepository) InvalidatePending(context context.Context, userID string, now time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1
		WHERE %s = $2 AND %s = FALSE AND %s > $1`,
		schema.UserLinkCode.Table,
		schema.UserLinkCode.ExpiresAt,
		schema.UserLinkCode.UserID, schema.UserLinkCode.IsUsed, schema.UserLinkCode.ExpiresAt,
	)

	if _, err := repository.pool.Exec(context, query, now, userID); err != nil {
		return fmt.Errorf("postgres_linkcode_repo_invalidate_failed: %w", err)
	}

	return nil
}

/*
MarkUsed atomically flips an unused code to used.

Description: The WHERE clause guards on isused = FALSE so exactly one of
any concurrent redemptions observes RowsAffected = 1.

Parameters:
  - context: context.Context
  - codeID: string
  - discordUserID: string
  - usedAt: time.Time

Returns:
  - bool: Whether this call won the flip
  - error: Persistence failures
*/
func (repository *PostgresLinkCodeRepository) MarkUsed(context context.Context, codeID string, discordUserID string, usedAt time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = TRUE, %s = $1, %s = $2
		WHERE %s = $3 AND %s = FALSE`,
		schema.UserLinkCode.Table,
		schema.UserLinkCode.IsUsed, schema.UserLinkCode.DiscordUserID, schema.UserLinkCode.UsedAt,
		schema.UserLinkCode.ID, schema.UserLinkCode.IsUsed,
	)

	commandTag, err := repository.pool.Exec(context, query, discordUserID, usedAt, codeID)
	if err != nil {
		return false, fmt.Errorf("postgres_linkcode_repo_mark_used_failed: %w", err)
	}

	return commandTag.RowsAffected() == 1, nil
}
