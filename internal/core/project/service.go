// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package project

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/indraneelk/taskhive/internal/core/activity"
	"github.com/indraneelk/taskhive/internal/platform/apperr"
	"github.com/indraneelk/taskhive/internal/users/identity"
	"github.com/indraneelk/taskhive/pkg/slug"
	"github.com/indraneelk/taskhive/pkg/uuid"
)

// # Contracts & Types

// Auditor captures audit entries emitted by project flows.
type Auditor interface {
	Record(context context.Context, input activity.RecordInput) error
}

// Service implements project lifecycle and membership use cases.
type Service struct {
	projectRepository ProjectRepository
	userRepository    identity.UserRepository
	auditor           Auditor
}

// NewService constructs a new [Service]. A nil auditor disables audit recording.
func NewService(projectRepo ProjectRepository, userRepo identity.UserRepository, auditor Auditor) *Service {
	return &Service{
		projectRepository: projectRepo,
		userRepository:    userRepo,
		auditor:           auditor,
	}
}

// # Project Lifecycle

// CreateInput holds the data required to create a project.
type CreateInput struct {
	Name        string
	Description *string
	IsPersonal  bool
}

/*
Create persists a new project owned by the given user.

Description: Personal projects are capped at one per user; the cap keeps
the "my tasks" space unambiguous.

Parameters:
  - context: context.Context
  - ownerID: string
  - input: CreateInput

Returns:
  - *Project: Created entity
  - error: Conflict (second personal project) or storage errors
*/
func (service *Service) Create(context context.Context, ownerID string, input CreateInput) (*Project, error) {
	if input.IsPersonal {
		existing, err := service.projectRepository.FindPersonalByOwner(context, ownerID)
		if err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("project_service_personal_lookup_failed: %w", err)
		}
		if existing != nil {
			return nil, apperr.Conflict("You already have a personal project")
		}
	}

	// Time-sortable ID to prevent PG index fragmentation.
	created := &Project{
		ID:          uuid.New(),
		Name:        input.Name,
		Slug:        slug.From(input.Name),
		Description: input.Description,
		OwnerID:     ownerID,
		IsPersonal:  input.IsPersonal,
	}

	if err := service.projectRepository.Create(context, created); err != nil {
		return nil, fmt.Errorf("project_service_create_failed: %w", err)
	}

	service.audit(context, activity.RecordInput{
		ActorID:    ownerID,
		ProjectID:  created.ID,
		Action:     activity.ActionProjectCreated,
		EntityType: activity.EntityProject,
		EntityID:   created.ID,
		Detail:     "Project " + created.Name + " created",
	})

	return created, nil
}

/*
Get returns the project with the given ID.

Parameters:
  - context: context.Context
  - projectID: string

Returns:
  - *Project: Hydrated entity
  - error: apperr.NotFound or storage errors
*/
func (service *Service) Get(context context.Context, projectID string) (*Project, error) {
	return service.projectRepository.FindByID(context, projectID)
}

/*
ListMine returns every project the user owns or belongs to.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Project: Owned and joined projects
  - error: Storage errors
*/
func (service *Service) ListMine(context context.Context, userID string) ([]*Project, error) {
	return service.projectRepository.ListForUser(context, userID)
}

// UpdateInput holds the mutable project fields.
type UpdateInput struct {
	Name        string
	Description *string
}

/*
Update modifies a project's metadata. The slug follows the name.

Description: Personal projects are immutable; their name and description
are fixed at creation.

Parameters:
  - context: context.Context
  - projectID: string
  - input: UpdateInput

Returns:
  - *Project: Updated entity
  - error: Unprocessable (personal project), apperr.NotFound, or storage errors
*/
func (service *Service) Update(context context.Context, projectID string, input UpdateInput) (*Project, error) {
	existing, err := service.projectRepository.FindByID(context, projectID)
	if err != nil {
		return nil, err
	}

	if existing.IsPersonal {
		return nil, apperr.Unprocessable("Personal projects cannot be edited")
	}

	existing.Name = input.Name
	existing.Slug = slug.From(input.Name)
	existing.Description = input.Description

	if err := service.projectRepository.Update(context, existing); err != nil {
		return nil, fmt.Errorf("project_service_update_failed: %w", err)
	}

	return existing, nil
}

/*
Delete soft-deletes a project.

Description: Personal projects can only be deleted by an admin; for
everyone else they exist for as long as their owner does.

Parameters:
  - context: context.Context
  - actorID: string
  - projectID: string
  - actorIsAdmin: bool

Returns:
  - error: Unprocessable (personal project, non-admin actor),
    apperr.NotFound, or storage errors
*/
func (service *Service) Delete(context context.Context, actorID, projectID string, actorIsAdmin bool) error {
	existing, err := service.projectRepository.FindByID(context, projectID)
	if err != nil {
		return err
	}

	if existing.IsPersonal && !actorIsAdmin {
		return apperr.Unprocessable("Personal projects can only be deleted by an admin")
	}

	if err := service.projectRepository.SoftDelete(context, projectID); err != nil {
		return fmt.Errorf("project_service_delete_failed: %w", err)
	}

	service.audit(context, activity.RecordInput{
		ActorID:    actorID,
		ProjectID:  projectID,
		Action:     activity.ActionProjectDeleted,
		EntityType: activity.EntityProject,
		EntityID:   projectID,
		Detail:     "Project " + existing.Name + " deleted",
	})

	return nil
}

// # Membership

/*
AddMember grants a user membership in a project.

Description: Personal projects never take members, and the owner already
holds every member permission, so both cases are rejected rather than
silently absorbed.

Parameters:
  - context: context.Context
  - actorID: string (who performs the addition)
  - projectID: string
  - userID: string (who is added)

Returns:
  - error: Unprocessable, Conflict, apperr.NotFound, or storage errors
*/
func (service *Service) AddMember(context context.Context, actorID, projectID, userID string) error {
	existing, err := service.projectRepository.FindByID(context, projectID)
	if err != nil {
		return err
	}

	if existing.IsPersonal {
		return apperr.Unprocessable("Personal projects cannot have members")
	}

	if existing.OwnerID == userID {
		return apperr.Conflict("The owner is already a member")
	}

	// The target must be a real account
	if _, err := service.userRepository.FindByID(context, userID); err != nil {
		return err
	}

	member := &Member{
		ProjectID: projectID,
		UserID:    userID,
		AddedBy:   actorID,
	}

	if err := service.projectRepository.AddMember(context, member); err != nil {
		return fmt.Errorf("project_service_add_member_failed: %w", err)
	}

	service.audit(context, activity.RecordInput{
		ActorID:    actorID,
		ProjectID:  projectID,
		Action:     activity.ActionMemberAdded,
		EntityType: activity.EntityUser,
		EntityID:   userID,
		Detail:     "User added to project " + existing.Name,
	})

	return nil
}

/*
RemoveMember revokes a user's membership in a project.

Parameters:
  - context: context.Context
  - actorID: string (who performs the removal)
  - projectID: string
  - userID: string (who is removed)

Returns:
  - error: Unprocessable (owner), apperr.NotFound, or storage errors
*/
func (service *Service) RemoveMember(context context.Context, actorID, projectID, userID string) error {
	existing, err := service.projectRepository.FindByID(context, projectID)
	if err != nil {
		return err
	}

	if existing.OwnerID == userID {
		return apperr.Unprocessable("The owner cannot be removed from their project")
	}

	removed, err := service.projectRepository.RemoveMember(context, projectID, userID)
	if err != nil {
		return fmt.Errorf("project_service_remove_member_failed: %w", err)
	}
	if !removed {
		return apperr.NotFound("Membership")
	}

	service.audit(context, activity.RecordInput{
		ActorID:    actorID,
		ProjectID:  projectID,
		Action:     activity.ActionMemberRemoved,
		EntityType: activity.EntityUser,
		EntityID:   userID,
		Detail:     "User removed from project " + existing.Name,
	})

	return nil
}

/*
ListMembers returns the membership rows of a project.

Parameters:
  - context: context.Context
  - projectID: string

Returns:
  - []*Member: Memberships, owner excluded
  - error: Storage errors
*/
func (service *Service) ListMembers(context context.Context, projectID string) ([]*Member, error) {
	return service.projectRepository.ListMembers(context, projectID)
}

// audit records an entry when an auditor is configured. Audit failures do
// not fail the domain flow.
func (service *Service) audit(context context.Context, input activity.RecordInput) {
	if service.auditor == nil {
		return
	}
	_ = service.auditor.Record(context, input)
}

// isNotFound reports whether err is the domain-level absence signal.
func isNotFound(err error) bool {
	var appError *apperr.AppError
	if errors.As(err, &appError) {
		return appError.HTTPStatus == http.StatusNotFound
	}
	return false
}
