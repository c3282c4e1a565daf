// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/indraneelk/taskhive/internal/authz"
	"github.com/indraneelk/taskhive/internal/core/activity"
	"github.com/indraneelk/taskhive/internal/platform/apperr"
	"github.com/indraneelk/taskhive/internal/platform/middleware"
	requestutil "github.com/indraneelk/taskhive/internal/platform/request"
	"github.com/indraneelk/taskhive/internal/platform/respond"
	"github.com/indraneelk/taskhive/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the project HTTP endpoints.
type Handler struct {
	projectService  *Service
	activityHandler *activity.Handler
	resolver        *authz.Resolver
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, activityHandler *activity.Handler, resolver *authz.Resolver) *Handler {
	return &Handler{
		projectService:  service,
		activityHandler: activityHandler,
		resolver:        resolver,
	}
}

// Routes returns a [chi.Router] configured with the project routes.
//
// # Endpoints
//   - POST   /                              : Create a project.
//   - GET    /                              : Projects of the caller.
//   - GET    /{projectID}                   : Project details (member).
//   - PATCH  /{projectID}                   : Update metadata (owner).
//   - DELETE /{projectID}                   : Delete the project (owner, or admin for personal).
//   - GET    /{projectID}/members           : Member list (member).
//   - POST   /{projectID}/members           : Add a member (owner).
//   - DELETE /{projectID}/members/{userID}  : Remove a member (owner).
//   - GET    /{projectID}/activity          : Audit trail (member).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireCapability(handler.resolver, authz.Authenticated()))
	router.Post("/", handler.create)
	router.Get("/", handler.listMine)

	router.Route("/{projectID}", func(projectRouter chi.Router) {

		// Reads require membership
		projectRouter.Group(func(memberRouter chi.Router) {
			memberRouter.Use(middleware.RequireProjectCapability(handler.resolver, "projectID", authz.ProjectMember))
			memberRouter.Get("/", handler.get)
			memberRouter.Get("/members", handler.listMembers)
			memberRouter.Get("/activity", handler.activityHandler.ListForProject)
		})

		// Administration requires ownership
		projectRouter.Group(func(ownerRouter chi.Router) {
			ownerRouter.Use(middleware.RequireProjectCapability(handler.resolver, "projectID", authz.ProjectOwner))
			ownerRouter.Patch("/", handler.update)
			ownerRouter.Post("/members", handler.addMember)
			ownerRouter.Delete("/members/{userID}", handler.removeMember)
		})

		// Deletion authorizes in the handler: owners delete their own
		// projects, admins delete personal ones
		projectRouter.Delete("/", handler.remove)
	})

	return router
}

// # Request Payloads

type createProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsPersonal  bool    `json:"is_personal"`
}

type updateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

/*
Create registers a new project owned by the caller.

POST /api/v1/projects

Request:
  - Body: createProjectRequest (Name, Description, IsPersonal)

Response:
  - 201: Project: Created project
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Second personal project
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createProjectRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MinLen(FieldName, input.Name, 2).
		MaxLen(FieldName, input.Name, 120)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.projectService.Create(request.Context(), actor.ID, CreateInput{
		Name:        input.Name,
		Description: input.Description,
		IsPersonal:  input.IsPersonal,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
ListMine returns the projects the caller owns or belongs to.

GET /api/v1/projects

Response:
  - 200: []Project
*/
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	projects, err := handler.projectService.ListMine(request.Context(), actor.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, projects)
}

/*
Get returns one project.

GET /api/v1/projects/{projectID}

Response:
  - 200: Project
  - 403: ErrForbidden: Caller is not a member
  - 404: ErrNotFound: Unknown project
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	project, err := handler.projectService.Get(request.Context(), requestutil.ID(request, "projectID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, project)
}

/*
Update modifies project metadata.

PATCH /api/v1/projects/{projectID}

Request:
  - Body: updateProjectRequest (Name, Description)

Response:
  - 200: Project: Updated project
  - 403: ErrForbidden: Caller is not the owner
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateProjectRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MinLen(FieldName, input.Name, 2).
		MaxLen(FieldName, input.Name, 120)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.projectService.Update(request.Context(), requestutil.ID(request, "projectID"), UpdateInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
Remove soft-deletes a project.

DELETE /api/v1/projects/{projectID}

Response:
  - 204: No content
  - 403: ErrForbidden: Caller is neither the owner nor an admin
  - 422: ErrUnprocessable: Personal project, non-admin caller
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	projectID := requestutil.ID(request, "projectID")

	// Admins may delete without owning the project
	if !actor.IsAdmin {
		result, err := handler.resolver.Authorize(request.Context(), actor, authz.ProjectOwner(projectID))
		if err != nil {
			respond.Error(writer, request, apperr.Internal(err))
			return
		}
		if !result.OK() {
			respond.Error(writer, request, apperr.Forbidden(result.Reason))
			return
		}
	}

	if err := handler.projectService.Delete(request.Context(), actor.ID, projectID, actor.IsAdmin); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
ListMembers returns the project's membership rows.

GET /api/v1/projects/{projectID}/members

Response:
  - 200: []Member
  - 403: ErrForbidden: Caller is not a member
*/
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	members, err := handler.projectService.ListMembers(request.Context(), requestutil.ID(request, "projectID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, members)
}

/*
AddMember grants a user membership.

POST /api/v1/projects/{projectID}/members

Request:
  - Body: addMemberRequest (UserID)

Response:
  - 201: Membership created
  - 403: ErrForbidden: Caller is not the owner
  - 404: ErrNotFound: Target user does not exist
  - 409: ErrConflict: Target is the owner
  - 422: ErrUnprocessable: Personal project
*/
func (handler *Handler) addMember(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addMemberRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUserID, input.UserID).
		UUID(FieldUserID, input.UserID)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	projectID := requestutil.ID(request, "projectID")
	if err := handler.projectService.AddMember(request.Context(), actor.ID, projectID, input.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{
		"project_id": projectID,
		"user_id":    input.UserID,
	})
}

/*
RemoveMember revokes a user's membership.

DELETE /api/v1/projects/{projectID}/members/{userID}

Response:
  - 204: No content
  - 403: ErrForbidden: Caller is not the owner
  - 404: ErrNotFound: No such membership
  - 422: ErrUnprocessable: Target is the owner
*/
func (handler *Handler) removeMember(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.projectService.RemoveMember(
		request.Context(),
		actor.ID,
		requestutil.ID(request, "projectID"),
		requestutil.ID(request, "userID"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
