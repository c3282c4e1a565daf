// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/indraneelk/taskhive/internal/platform/request"
	"github.com/indraneelk/taskhive/internal/platform/respond"
	"github.com/indraneelk/taskhive/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the profile HTTP endpoints.
type Handler struct {
	identityService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{identityService: service}
}

// Routes returns a [chi.Router] with the authenticated profile routes.
//
// # Endpoints
//   - GET    /         : Current actor's profile.
//   - PATCH  /         : Update profile metadata.
//   - DELETE /discord  : Remove the Discord binding.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.me)
	router.Patch("/", handler.updateProfile)
	router.Delete("/discord", handler.unlinkDiscord)

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

/*
Me returns the profile of the authenticated actor.

GET /api/v1/me

Response:
  - 200: User: The caller's profile
  - 401: ErrUnauthorized: Anonymous request
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.identityService.Profile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateProfile modifies the authenticated actor's display metadata.

PATCH /api/v1/me

Request:
  - Body: updateProfileRequest (DisplayName)

Response:
  - 200: User: Updated profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 401: ErrUnauthorized: Anonymous request
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldDisplayName, input.DisplayName).
		MaxLen(FieldDisplayName, input.DisplayName, 100)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.identityService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		DisplayName: input.DisplayName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UnlinkDiscord removes the authenticated actor's Discord binding.

DELETE /api/v1/me/discord

Response:
  - 204: No content
  - 401: ErrUnauthorized: Anonymous request
*/
func (handler *Handler) unlinkDiscord(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.identityService.UnlinkDiscord(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
