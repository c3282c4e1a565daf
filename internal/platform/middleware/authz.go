// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/indraneelk/taskhive/internal/authz"
	"github.com/indraneelk/taskhive/internal/platform/apperr"
	"github.com/indraneelk/taskhive/internal/platform/ctxutil"
	"github.com/indraneelk/taskhive/internal/platform/respond"
)

// # Actor Resolution

/*
ResolveActor extracts credential material from the request and resolves it
into an [authz.Actor] stored in the context.

Description: Anonymous requests (no credential at all) pass through with a
nil actor so that public routes keep working behind the same chain. Any
credential that is present but fails verification terminates the request
with 401; downstream guards never see a half-verified identity.

Parameters:
  - resolver: *authz.Resolver (the configured credential resolver)

Returns:
  - func(http.Handler) http.Handler: The middleware decorator
*/
func ResolveActor(resolver *authz.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Pull credential material off the wire
			creds := authz.CredentialsFromRequest(request)

			// 2. Resolve it against the directory and token verifier
			result, err := resolver.Resolve(request.Context(), creds, authz.Authenticated())
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			// 3. Anonymous requests continue without an actor
			if !result.OK() {
				if result.Kind == authz.KindNoCredential {
					next.ServeHTTP(writer, request)
					return
				}

				// A credential was offered and it failed verification
				respond.Error(writer, request, apperr.Unauthorized(result.Reason))
				return
			}

			// 4. Inject the verified actor for downstream handlers
			ctx := ctxutil.WithActor(request.Context(), result.Actor)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Capability Guards

// RequireCapability enforces a fixed capability on every request that
// reaches the wrapped handler. Use it for route-wide requirements such as
// [authz.Admin] or [authz.Authenticated].
func RequireCapability(resolver *authz.Resolver, capability authz.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			actor := ctxutil.GetActor(request.Context())

			result, err := resolver.Authorize(request.Context(), actor, capability)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			if !result.OK() {
				respond.Error(writer, request, rejectionError(result))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireProjectCapability enforces a project-scoped capability where the
// project ID is taken from the named chi URL parameter.
func RequireProjectCapability(resolver *authz.Resolver, urlParam string, build func(projectID string) authz.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			projectID := chi.URLParam(request, urlParam)
			if projectID == "" {
				respond.Error(writer, request, apperr.ValidationError("Missing project identifier"))
				return
			}

			actor := ctxutil.GetActor(request.Context())

			result, err := resolver.Authorize(request.Context(), actor, build(projectID))
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			if !result.OK() {
				respond.Error(writer, request, rejectionError(result))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// rejectionError maps a non-OK resolution to the transport error taxonomy.
// Unauthenticated and Forbidden stay distinguishable on the wire (401 vs 403).
func rejectionError(result authz.Result) *apperr.AppError {
	if result.Decision == authz.DecisionForbidden {
		return apperr.Forbidden(result.Reason)
	}
	return apperr.Unauthorized(result.Reason)
}
