// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

/*
Package activity implements the append-only audit trail.

Domain services record notable events (membership changes, Discord
linking) here; project members can read back the entries scoped to their
project. Entries are never updated or deleted.
*/
package activity

import (
	"context"
	"time"

	"github.com/indraneelk/taskhive/pkg/pagination"
)

// # Action Catalog

const (
	ActionDiscordLinked   = "discord.linked"
	ActionDiscordUnlinked = "discord.unlinked"
	ActionProjectCreated  = "project.created"
	ActionProjectDeleted  = "project.deleted"
	ActionMemberAdded     = "project.member_added"
	ActionMemberRemoved   = "project.member_removed"
)

const (
	EntityUser    = "user"
	EntityProject = "project"
)

// # Domain Entities

// Entry is one immutable audit record.
type Entry struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	ProjectID  string    `json:"project_id,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Detail     string    `json:"detail,omitempty"`
	IPAddress  string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// # Data Access

// EntryRepository defines the data access contract for audit entries.
type EntryRepository interface {

	/*
		Insert appends a new audit entry.

		Parameters:
		  - context: context.Context
		  - entry: *Entry

		Returns:
		  - error: Persistence failures
	*/
	Insert(context context.Context, entry *Entry) error

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
	ListByProject(context context.Context, projectID string, params pagination.Params) ([]Entry, int, error)
}
