// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/indraneelk/taskhive/internal/authz"
	"github.com/indraneelk/taskhive/internal/core/project"
	"github.com/indraneelk/taskhive/internal/discord"
	"github.com/indraneelk/taskhive/internal/platform/config"
	"github.com/indraneelk/taskhive/internal/platform/constants"
	"github.com/indraneelk/taskhive/internal/platform/middleware"
	"github.com/indraneelk/taskhive/internal/users/identity"
	"github.com/indraneelk/taskhive/internal/users/link"
	"github.com/indraneelk/taskhive/internal/users/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Identity handles the authenticated profile surface.
	Identity *identity.Handler

	// Session handles session exchange and logout.
	Session *session.Handler

	// Link handles Discord link codes, user and bot sides.
	Link *link.Handler

	// Project handles projects, memberships, and their audit trail.
	Project *project.Handler

	// Discord handles the interactions webhook. Nil when no public key is
	// configured; the route is then not mounted.
	Discord *discord.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, resolver *authz.Resolver, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.NewRateLimiter(context).Handler())
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.ResolveActor(resolver))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/projects", h.Project.Routes())

		// Authenticated user surface
		api.Group(func(authenticated chi.Router) {
			authenticated.Use(middleware.RequireCapability(resolver, authz.Authenticated()))
			authenticated.Mount("/me", h.Identity.Routes())
			authenticated.Mount("/link-codes", h.Link.Routes())
		})

		// Session exchange authenticates inside the handler; logout is public
		api.Mount("/sessions", h.Session.Routes())

		// Bot surface: signed headers instead of user credentials
		api.Mount("/bot/link-codes", h.Link.BotRoutes())

		if h.Discord != nil {
			api.Mount("/discord/interactions", h.Discord.Routes())
		}
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
