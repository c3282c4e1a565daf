// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/indraneelk/taskhive/internal/platform/constants"
	requestutil "github.com/indraneelk/taskhive/internal/platform/request"
	"github.com/indraneelk/taskhive/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the session HTTP endpoints.
type Handler struct {
	sessionService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{sessionService: service}
}

// Routes returns a [chi.Router] configured with session routes.
//
// # Endpoints
//   - POST /        : Exchange the current credential for a session cookie.
//   - POST /logout  : Invalidate the current session cookie.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Post("/logout", handler.logout)

	return router
}

/*
Create establishes a browser session for the authenticated actor.

POST /api/v1/sessions

Description: The caller authenticates with any accepted credential (usually
a bearer JWT from the identity provider) and receives an HttpOnly session
cookie in exchange, so browsers do not have to hold the JWT.

Response:
  - 201: expires_at: Session expiry timestamp
  - 401: ErrUnauthorized: Anonymous request
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	established, err := handler.sessionService.Establish(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    established.Token,
		Path:     constants.SessionCookiePath,
		Expires:  established.ExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.Created(writer, map[string]any{
		"expires_at": established.ExpiresAt,
	})
}

/*
Logout invalidates the caller's session cookie.

POST /api/v1/sessions/logout

Description: Idempotent. A request without a session cookie still clears
the cookie and returns success.

Response:
  - 204: No content
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {

	// Invalidate server-side state when a cookie is present
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		if err := handler.sessionService.Destroy(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	// Clear the cookie regardless
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}
