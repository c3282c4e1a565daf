// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package activity

import (
	"context"
	"fmt"

	"github.com/indraneelk/taskhive/internal/authz"
	"github.com/indraneelk/taskhive/pkg/pagination"
	"github.com/indraneelk/taskhive/pkg/uuid"
)

// # Service

// Service implements audit trail use cases.
type Service struct {
	entryRepository EntryRepository
	clock           authz.Clock
}

// NewService constructs a new [Service]. A nil clock defaults to the system clock.
func NewService(entryRepo EntryRepository, clock authz.Clock) *Service {
	if clock == nil {
		clock = authz.SystemClock()
	}
	return &Service{entryRepository: entryRepo, clock: clock}
}

// RecordInput holds the data for one audit event.
type RecordInput struct {
	ActorID    string
	ProjectID  string
	Action     string
	EntityType string
	EntityID   string
	Detail     string
	IPAddress  string
}

/*
Record appends one audit entry.

Description: Recording is fire-and-forget from the caller's point of view;
domain flows do not fail because the audit write failed, but the error is
surfaced so callers can log it.

Parameters:
  - context: context.Context
  - input: RecordInput

Returns:
  - error: Persistence failures
*/
func (service *Service) Record(context context.Context, input RecordInput) error {
	entry := &Entry{
		ID:         uuid.New(),
		ActorID:    input.ActorID,
		ProjectID:  input.ProjectID,
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Detail:     input.Detail,
		IPAddress:  input.IPAddress,
		CreatedAt:  service.clock.Now(),
	}

	if err := service.entryRepository.Insert(context, entry); err != nil {
		return fmt.Errorf("activity_service_record_failed: %w", err)
	}

	return nil
}

/*
ListForProject returns a page of a project's audit entries, newest first.

Parameters:
  - context: context.Context
  - projectID: string
  - params: pagination.Params

Returns:
  - []Entry: Page of entries
  - pagination.Meta: Page metadata
  - error: Retrieval failures
*/
func (service *Service) ListForProject(context context.Context, projectID string, params pagination.Params) ([]Entry, pagination.Meta, error) {
	entries, total, err := service.entryRepository.ListByProject(context, projectID, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return entries, pagination.NewMeta(params.Page, params.Limit, total), nil
}
