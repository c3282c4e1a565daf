// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package activity

import (
	"net/http"

	requestutil "github.com/indraneelk/taskhive/internal/platform/request"
	"github.com/indraneelk/taskhive/internal/platform/respond"
	"github.com/indraneelk/taskhive/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the audit trail HTTP endpoints.
type Handler struct {
	activityService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{activityService: service}
}

/*
ListForProject returns a project's audit entries.

GET /api/v1/projects/{projectID}/activity

Description: Mounted under the project router behind a ProjectMember
capability guard; membership is already verified when this runs.

Response:
  - 200: []Entry with pagination metadata
  - 403: ErrForbidden: Caller is not a member of the project
*/
func (handler *Handler) ListForProject(writer http.ResponseWriter, request *http.Request) {
	projectID := requestutil.ID(request, "projectID")
	params := pagination.FromRequest(request)

	entries, meta, err := handler.activityService.ListForProject(request.Context(), projectID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, meta)
}
