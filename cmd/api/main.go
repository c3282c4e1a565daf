// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

// Command api is the entry point for the Taskhive HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the credential resolver and domain services.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/indraneelk/taskhive/internal/api"
	"github.com/indraneelk/taskhive/internal/authz"
	"github.com/indraneelk/taskhive/internal/core/activity"
	"github.com/indraneelk/taskhive/internal/core/project"
	"github.com/indraneelk/taskhive/internal/discord"
	"github.com/indraneelk/taskhive/internal/platform/config"
	"github.com/indraneelk/taskhive/internal/platform/constants"
	"github.com/indraneelk/taskhive/internal/platform/migration"
	pgstore "github.com/indraneelk/taskhive/internal/platform/postgres"
	redisstore "github.com/indraneelk/taskhive/internal/platform/redis"
	"github.com/indraneelk/taskhive/internal/platform/sec"
	"github.com/indraneelk/taskhive/internal/users/identity"
	"github.com/indraneelk/taskhive/internal/users/link"
	"github.com/indraneelk/taskhive/internal/users/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Credential Resolver ────────────────────────────────────────────
	tokenVerifier, err := sec.NewTokenVerifier(startupCtx, sec.VerifierConfig{
		JWKSURL:   cfg.JWTJWKSURL,
		Secret:    cfg.JWTSecret,
		IssuerRef: cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
	})
	must(log, err, "initialize token verifier")

	userRepository := identity.NewUserRepository(pool)
	projectRepository := project.NewProjectRepository(pool)

	sessionService := session.NewService(session.NewSessionRepository(rdb), nil)

	resolver := authz.NewResolver(
		identity.NewDirectory(userRepository, projectRepository),
		session.NewStore(sessionService),
		tokenVerifier,
		nil,
		authz.Config{
			BotSecret:       cfg.BotSharedSecret,
			SuperAdminEmail: cfg.SuperAdminEmail,
		},
	)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	activityService := activity.NewService(activity.NewEntryRepository(pool), nil)

	identityService := identity.NewService(userRepository)
	linkService := link.NewService(link.NewLinkCodeRepository(pool), userRepository, activityService, nil)
	projectService := project.NewService(projectRepository, userRepository, activityService)

	activityHandler := activity.NewHandler(activityService)

	var discordHandler *discord.Handler
	if cfg.BotPublicKey != "" {
		publicKey, err := sec.ParseEd25519PublicKey(cfg.BotPublicKey)
		must(log, err, "parse bot public key")
		discordHandler = discord.NewHandler(publicKey)
	}

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Identity:  identity.NewHandler(identityService),
		Session:   session.NewHandler(sessionService),
		Link:      link.NewHandler(linkService, cfg.BotSharedSecret, nil),
		Project:   project.NewHandler(projectService, activityHandler, resolver),
		Discord:   discordHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, resolver, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
