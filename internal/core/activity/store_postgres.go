// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package activity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/indraneelk/taskhive/internal/platform/database/schema"
	"github.com/indraneelk/taskhive/pkg/pagination"
)

// # Entry Repository

// PostgresEntryRepository implements the EntryRepository interface using pgx.
type PostgresEntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new PostgreSQL implementation of the EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *PostgresEntryRepository {
	return &PostgresEntryRepository{pool: pool}
}

/*
Insert appends a new audit entry to the system.activitylog table.

Parameters:
  - context: context.Context
  - entry: *Entry (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresEntryRepository) Insert(context context.Context, entry *Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.SystemActivityLog.Table,
		schema.SystemActivityLog.ID, schema.SystemActivityLog.ActorID,
		schema.SystemActivityLog.ProjectID, schema.SystemActivityLog.Action,
		schema.SystemActivityLog.EntityType, schema.SystemActivityLog.EntityID,
		schema.SystemActivityLog.Detail, schema.SystemActivityLog.IPAddress,
		schema.SystemActivityLog.CreatedAt,
	)

	var projectID *string
	if entry.ProjectID != "" {
		projectID = &entry.ProjectID
	}

	_, err := repository.pool.Exec(context, query,
		entry.ID,
		entry.ActorID,
		projectID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Detail,
		entry.IPAddress,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_activity_repo_insert_failed: %w", err)
	}

	return nil
}

/*
ListByProject returns a page of entries for one project, newest first.

Parameters:
  - context: context.Context
  - projectID: string
  - params: pagination.Params

Returns:
  - []Entry: Page of entries
  - int: Total entry count for the project
  - error: Retrieval failures
*/
func (repository *PostgresEntryRepository) ListByProject(context context.Context, projectID string, params pagination.Params) ([]Entry, int, error) {

	// Count first so the page metadata is correct even for out-of-range pages
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.SystemActivityLog.Table, schema.SystemActivityLog.ProjectID,
	)

	var total int
	if err := repository.pool.QueryRow(context, countQuery, projectID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_activity_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3`,
		schema.SystemActivityLog.ID, schema.SystemActivityLog.ActorID,
		schema.SystemActivityLog.ProjectID, schema.SystemActivityLog.Action,
		schema.SystemActivityLog.EntityType, schema.SystemActivityLog.EntityID,
		schema.SystemActivityLog.Detail, schema.SystemActivityLog.IPAddress,
		schema.SystemActivityLog.CreatedAt,
		schema.SystemActivityLog.Table, schema.SystemActivityLog.ProjectID,
		schema.SystemActivityLog.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, projectID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_activity_repo_list_failed: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, params.Limit)
	for rows.Next() {
		var entry Entry
		var entryProjectID *string

		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entryProjectID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Detail,
			&entry.IPAddress,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_activity_repo_scan_failed: %w", err)
		}

		if entryProjectID != nil {
			entry.ProjectID = *entryProjectID
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_activity_repo_rows_failed: %w", err)
	}

	return entries, total, nil
}
