// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

/*
Package project manages Taskhive projects and their memberships.

A project is the unit of collaboration and the scope of the capability
model: membership grants read access, ownership grants administration.

# Core Responsibility

  - Organization: Defines the [Project] entity and its metadata.
  - Membership: Manages [Member] associations.
  - Personal projects: One per user, owner-only, undeletable.

The authorization layer evaluates ProjectMember and ProjectOwner
capabilities against the data this package owns.
*/
package project

import "time"

// # Core Entities

// Project represents a collaboration space for a team of users.
type Project struct {
	ID          string     `json:"id"` // UUIDv7
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	OwnerID     string     `json:"owner_id"`
	IsPersonal  bool       `json:"is_personal"`
	MemberCount int        `json:"member_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// Member represents a user's membership in a specific project.
//
// The owner is not stored as a member row; ownership lives on the project
// itself and implies every member permission.
type Member struct {
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	AddedBy   string    `json:"added_by"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldUserID      = "user_id"
)
