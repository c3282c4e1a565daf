// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package project

import "context"

// # Project Data Access

// ProjectRepository defines the data access contract for projects and memberships.
type ProjectRepository interface {

	/*
		Create persists a new project.

		Parameters:
		  - context: context.Context
		  - project: *Project

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, project *Project) error

	/*
		FindByID returns the project with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Project: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Project, error)

	/*
		FindPersonalByOwner returns the owner's personal project, if any.

		Parameters:
		  - context: context.Context
		  - ownerID: string

		Returns:
		  - *Project: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindPersonalByOwner(context context.Context, ownerID string) (*Project, error)

	/*
		ListForUser returns every project the user owns or is a member of.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []*Project: Owned and joined projects
		  - error: Retrieval failures
	*/
	ListForUser(context context.Context, userID string) ([]*Project, error)

	/*
		Update persists changes to mutable project fields.

		Parameters:
		  - context: context.Context
		  - project: *Project

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, project *Project) error

	/*
		SoftDelete marks the project as deleted without removing the row.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error

	/*
		AddMember persists a membership row. Adding an existing member is a no-op.

		Parameters:
		  - context: context.Context
		  - member: *Member

		Returns:
		  - error: Persistence failures
	*/
	AddMember(context context.Context, member *Member) error

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
	RemoveMember(context context.Context, projectID, userID string) (bool, error)

	/*
		ListMembers returns the membership rows of a project.

		Parameters:
		  - context: context.Context
		  - projectID: string

		Returns:
		  - []*Member: Memberships, owner excluded
		  - error: Retrieval failures
	*/
	ListMembers(context context.Context, projectID string) ([]*Member, error)

	/*
		ListMemberIDs returns just the member user IDs of a project.

		Parameters:
		  - context: context.Context
		  - projectID: string

		Returns:
		  - []string: Member user IDs, owner excluded
		  - error: Retrieval failures
	*/
	ListMemberIDs(context context.Context, projectID string) ([]string, error)
}
