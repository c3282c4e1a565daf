// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/indraneelk/taskhive/internal/authz"
	"github.com/indraneelk/taskhive/internal/platform/apperr"
	"github.com/indraneelk/taskhive/internal/platform/database/schema"
	"github.com/indraneelk/taskhive/internal/platform/dberr"
)

// # Project Repository

// PostgresProjectRepository implements the ProjectRepository interface using pgx.
//
// It also satisfies the directory's project lookup contract, so the
// credential resolver reads membership from the same source of truth.
type PostgresProjectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository creates a new PostgreSQL implementation of the ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) *PostgresProjectRepository {
	return &PostgresProjectRepository{pool: pool}
}

// projectColumns is the shared projection for project hydration. The member
// count is computed on read.
func projectColumns() string {
	return fmt.Sprintf(`p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s,
		(SELECT COUNT(*) FROM %s m WHERE m.%s = p.%s)`,
		schema.CoreProject.ID, schema.CoreProject.Name, schema.CoreProject.Slug,
		schema.CoreProject.Description, schema.CoreProject.OwnerID, schema.CoreProject.IsPersonal,
		schema.CoreProject.CreatedAt, schema.CoreProject.UpdatedAt,
		schema.CoreProjectMember.Table, schema.CoreProjectMember.ProjectID, schema.CoreProject.ID,
	)
}

// scanProject hydrates a Project from a single-row query.
func scanProject(row pgx.Row) (*Project, error) {
	project := &Project{}

	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Slug,
		&project.Description,
		&project.OwnerID,
		&project.IsPersonal,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.MemberCount,
	)
	if err != nil {
		return nil, err
	}

	return project, nil
}

/*
Create persists a new project record into the core.project table.

Parameters:
  - context: context.Context
  - project: *Project (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresProjectRepository) Create(context context.Context, project *Project) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.CoreProject.Table,
		schema.CoreProject.ID, schema.CoreProject.Name, schema.CoreProject.Slug,
		schema.CoreProject.Description, schema.CoreProject.OwnerID, schema.CoreProject.IsPersonal,
		schema.CoreProject.CreatedAt, schema.CoreProject.UpdatedAt,
	)

	now := time.Now()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		project.ID,
		project.Name,
		project.Slug,
		project.Description,
		project.OwnerID,
		project.IsPersonal,
		project.CreatedAt,
		project.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A project with this name already exists")
		}
		return fmt.Errorf("postgres_project_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a project record by its UUID.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Project: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresProjectRepository) FindByID(context context.Context, id string) (*Project, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s p
		WHERE p.%s = $1 AND p.%s IS NULL`,
		projectColumns(),
		schema.CoreProject.Table, schema.CoreProject.ID, schema.CoreProject.DeletedAt,
	)

	project, err := scanProject(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Project")
		}
		return nil, fmt.Errorf("postgres_project_repo_find_by_id_failed: %w", err)
	}

	return project, nil
}

/*
FindPersonalByOwner retrieves the owner's personal project.

Parameters:
  - context: context.Context
  - ownerID: string

Returns:
  - *Project: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresProjectRepository) FindPersonalByOwner(context context.Context, ownerID string) (*Project, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s p
		WHERE p.%s = $1 AND p.%s = TRUE AND p.%s IS NULL`,
		projectColumns(),
		schema.CoreProject.Table, schema.CoreProject.OwnerID,
		schema.CoreProject.IsPersonal, schema.CoreProject.DeletedAt,
	)

	project, err := scanProject(repository.pool.QueryRow(context, query, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Personal project")
		}
		return nil, fmt.Errorf("postgres_project_repo_find_personal_failed: %w", err)
	}

	return project, nil
}

/*
ListForUser returns every project the user owns or is a member of.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Project: Owned and joined projects, newest first
  - error: Database errors
*/
func (repository *PostgresProjectRepository) ListForUser(context context.Context, userID string) ([]*Project, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s p
		WHERE p.%s IS NULL
		  AND (p.%s = $1 OR EXISTS (
			SELECT 1 FROM %s m WHERE m.%s = p.%s AND m.%s = $1))
		ORDER BY p.%s DESC`,
		projectColumns(),
		schema.CoreProject.Table, schema.CoreProject.DeletedAt, schema.CoreProject.OwnerID,
		schema.CoreProjectMember.Table, schema.CoreProjectMember.ProjectID, schema.CoreProject.ID,
		schema.CoreProjectMember.UserID,
		schema.CoreProject.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_project_repo_list_failed: %w", err)
	}
	defer rows.Close()

	projects := make([]*Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_project_repo_scan_failed: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_project_repo_rows_failed: %w", err)
	}

	return projects, nil
}

/*
Update modifies the mutable metadata of a project.

Parameters:
  - context: context.Context
  - project: *Project

Returns:
  - error: Persistence failures
*/
func (repository *PostgresProjectRepository) Update(context context.Context, project *Project) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4
		WHERE %s = $5 AND %s IS NULL`,
		schema.CoreProject.Table,
		schema.CoreProject.Name, schema.CoreProject.Slug,
		schema.CoreProject.Description, schema.CoreProject.UpdatedAt,
		schema.CoreProject.ID, schema.CoreProject.DeletedAt,
	)

	project.UpdatedAt = time.Now()

	commandTag, err := repository.pool.Exec(context, query,
		project.Name,
		project.Slug,
		project.Description,
		project.UpdatedAt,
		project.ID,
	)

	if err != nil {
		return fmt.Errorf("postgres_project_repo_update_failed: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return apperr.NotFound("Project")
	}

	return nil
}

/*
SoftDelete marks the project as deleted without removing the row.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresProjectRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1
		WHERE %s = $2 AND %s IS NULL`,
		schema.CoreProject.Table,
		schema.CoreProject.DeletedAt,
		schema.CoreProject.ID, schema.CoreProject.DeletedAt,
	)

	commandTag, err := repository.pool.Exec(context, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("postgres_project_repo_soft_delete_failed: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return apperr.NotFound("Project")
	}

	return nil
}

// # Membership

/*
AddMember persists a membership row. Adding an existing member is a no-op.

Parameters:
  - context: context.Context
  - member: *Member

Returns:
  - error: Persistence failures
*/
func (repository *PostgresProjectRepository) AddMember(context context.Context, member *Member) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s, %s) DO NOTHING`,
		schema.CoreProjectMember.Table,
		schema.CoreProjectMember.ProjectID, schema.CoreProjectMember.UserID,
		schema.CoreProjectMember.AddedBy, schema.CoreProjectMember.CreatedAt,
		schema.CoreProjectMember.ProjectID, schema.CoreProjectMember.UserID,
	)

	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		member.ProjectID,
		member.UserID,
		member.AddedBy,
		member.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_project_repo_add_member_failed: %w", err)
	}

	return nil
}

/*
RemoveMember deletes a membership row.

Parameters:
  - context: context.Context
  - projectID: string
  - userID: string

Returns:
  - bool: Whether a row was removed
  - error: Persistence failures
*/
func (repository *PostgresProjectRepository) RemoveMember(context context.Context, projectID, userID string) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1 AND %s = $2`,
		schema.CoreProjectMember.Table,
		schema.CoreProjectMember.ProjectID, schema.CoreProjectMember.UserID,
	)

	commandTag, err := repository.pool.Exec(context, query, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("postgres_project_repo_remove_member_failed: %w", err)
	}

	return commandTag.RowsAffected() == 1, nil
}

/*
ListMembers returns the membership rows of a project.

Parameters:
  - context: context.Context
  - projectID: string

Returns:
  - []*Member: Memberships, oldest first
  - error: Database errors
*/
func (repository *PostgresProjectRepository) ListMembers(context context.Context, projectID string) ([]*Member, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC`,
		schema.CoreProjectMember.ProjectID, schema.CoreProjectMember.UserID,
		schema.CoreProjectMember.AddedBy, schema.CoreProjectMember.CreatedAt,
		schema.CoreProjectMember.Table, schema.CoreProjectMember.ProjectID,
		schema.CoreProjectMember.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("postgres_project_repo_list_members_failed: %w", err)
	}
	defer rows.Close()

	members := make([]*Member, 0)
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(&member.ProjectID, &member.UserID, &member.AddedBy, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres_project_repo_member_scan_failed: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_project_repo_member_rows_failed: %w", err)
	}

	return members, nil
}

/*
ListMemberIDs returns just the member user IDs of a project.

Parameters:
  - context: context.Context
  - projectID: string

Returns:
  - []string: Member user IDs, owner excluded
  - error: Database errors
*/
func (repository *PostgresProjectRepository) ListMemberIDs(context context.Context, projectID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1`,
		schema.CoreProjectMember.UserID, schema.CoreProjectMember.Table,
		schema.CoreProjectMember.ProjectID,
	)

	rows, err := repository.pool.Query(context, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("postgres_project_repo_member_ids_failed: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres_project_repo_member_id_scan_failed: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_project_repo_member_id_rows_failed: %w", err)
	}

	return ids, nil
}

// # Resolver Support

/*
FindAuthzProject returns the resolver's view of a project.

Description: Satisfies the directory's project lookup contract without
dragging the full entity through the authorization path.

Parameters:
  - context: context.Context
  - projectID: string

Returns:
  - *authz.Project: Ownership facts only
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresProjectRepository) FindAuthzProject(context context.Context, projectID string) (*authz.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreProject.ID, schema.CoreProject.OwnerID, schema.CoreProject.IsPersonal,
		schema.CoreProject.Table, schema.CoreProject.ID, schema.CoreProject.DeletedAt,
	)

	view := &authz.Project{}
	err := repository.pool.QueryRow(context, query, projectID).Scan(&view.ID, &view.OwnerID, &view.IsPersonal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Project")
		}
		return nil, fmt.Errorf("postgres_project_repo_authz_lookup_failed: %w", err)
	}

	return view, nil
}
