// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

// Command api is the entry point for the Bazario HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (fails fast on a
//     missing or short signing secret).
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
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

	"github.com/phamminhduc/bazario/internal/api"
	"github.com/phamminhduc/bazario/internal/platform/activity"
	"github.com/phamminhduc/bazario/internal/platform/config"
	"github.com/phamminhduc/bazario/internal/platform/constants"
	"github.com/phamminhduc/bazario/internal/platform/mailer"
	"github.com/phamminhduc/bazario/internal/platform/migration"
	pgstore "github.com/phamminhduc/bazario/internal/platform/postgres"
	"github.com/phamminhduc/bazario/internal/platform/ratelimit"
	redisstore "github.com/phamminhduc/bazario/internal/platform/redis"
	"github.com/phamminhduc/bazario/internal/platform/sec"
	"github.com/phamminhduc/bazario/internal/users/account"
	"github.com/phamminhduc/bazario/internal/users/auth"
)

// activityBufferSize bounds the in-flight account activity events.
const activityBufferSize = 256

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Bazario] service_initializing")

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

	// ── 6. Token Service ──────────────────────────────────────────────────
	// Refuses a secret shorter than 32 bytes; the process must not serve
	// traffic with a forgeable signing key.
	jwtSvc, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Outbound Mail & Activity Sink ──────────────────────────────────
	mail, err := mailer.New(cfg, log)
	must(log, err, "initialize mailer")

	events := activity.NewDispatcher(&activity.SlogSink{Logger: log}, activityBufferSize)
	defer events.Close()

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	verificationSecrets := auth.NewVerificationSecretRepository(rdb)
	resetOTPs := auth.NewResetOTPRepository(rdb)

	authService := auth.NewService(
		userRepository,
		sessionRepository,
		verificationSecrets,
		resetOTPs,
		jwtSvc,
		mail,
		events,
		cfg.PublicBaseURL,
	)

	// Redis-backed fixed windows for the credential-bearing endpoints,
	// shared across replicas and independent of the per-account lockout.
	authWindow := ratelimit.NewWindow(rdb, constants.RedisPrefixAuthWindow,
		constants.AuthAttemptLimit, constants.AuthAttemptWindow)
	resetWindow := ratelimit.NewWindow(rdb, constants.RedisPrefixResetWindow,
		constants.ResetRequestLimit, constants.ResetRequestWindow)

	authHandler := auth.NewHandler(authService, authWindow.Middleware(), resetWindow.Middleware())

	accountService := account.NewService(userRepository, sessionRepository, events)
	accountHandler := account.NewHandler(accountService)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Account:   accountHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	// Session janitor: reclaim storage from sessions past their expiry. One
	// sweep at startup, then periodically for the life of the server.
	if err := sessionRepository.DeleteExpired(startupCtx); err != nil {
		log.Warn("session_sweep_failed", slog.Any("error", err))
	}
	go func() {
		ticker := time.NewTicker(auth.SessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sessionRepository.DeleteExpired(serverCtx); err != nil {
					log.Warn("session_sweep_failed", slog.Any("error", err))
				}
			case <-serverCtx.Done():
				return
			}
		}
	}()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, authService, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
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
