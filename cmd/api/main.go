// Copyright (c) 2026 Maildeck. All rights reserved.

// Command api is the entry point for the Maildeck HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
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

	"github.com/maildeck/maildeck/internal/api"
	"github.com/maildeck/maildeck/internal/mail/attachment"
	"github.com/maildeck/maildeck/internal/mail/email"
	"github.com/maildeck/maildeck/internal/mail/folder"
	"github.com/maildeck/maildeck/internal/mail/recipient"
	"github.com/maildeck/maildeck/internal/platform/config"
	"github.com/maildeck/maildeck/internal/platform/constants"
	"github.com/maildeck/maildeck/internal/platform/mailcheck"
	"github.com/maildeck/maildeck/internal/platform/migration"
	pgstore "github.com/maildeck/maildeck/internal/platform/postgres"
	redisstore "github.com/maildeck/maildeck/internal/platform/redis"
	"github.com/maildeck/maildeck/internal/platform/sec"
	"github.com/maildeck/maildeck/internal/users/account"
	"github.com/maildeck/maildeck/internal/users/auth"
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

	log.Info("[Maildeck] service_initializing")

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

	// ── 6. Security Services ──────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// The MX check is optional. A nil checker disables it entirely.
	var mxChecker auth.MXChecker
	if cfg.MXCheckEnabled {
		mxChecker = mailcheck.NewChecker(cfg.MXCheckTimeout)
		log.Info("mx_check_enabled", slog.Duration("timeout", cfg.MXCheckTimeout))
	}

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
	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	pendingMFARepository := auth.NewPendingMFARepository(rdb)
	authService := auth.NewService(userRepository, sessionRepository, pendingMFARepository, jwtSvc, mxChecker, cfg.MFAIssuer)
	authHandler := auth.NewHandler(authService)

	accountRepository := account.NewAccountRepository(pool)
	accountService := account.NewService(accountRepository, sessionRepository, log)
	accountHandler := account.NewHandler(accountService)

	emailRepository := email.NewPostgresRepository(pool)
	emailService := email.NewService(emailRepository, log)
	emailHandler := email.NewHandler(emailService)

	folderRepository := folder.NewPostgresRepository(pool)
	folderService := folder.NewService(folderRepository, log)
	folderHandler := folder.NewHandler(folderService)

	recipientRepository := recipient.NewPostgresRepository(pool)
	recipientTypeRepository := recipient.NewPostgresTypeRepository(pool)
	recipientService := recipient.NewService(recipientRepository, recipientTypeRepository, log)
	recipientHandler := recipient.NewHandler(recipientService)

	attachmentRepository := attachment.NewPostgresRepository(pool)
	attachmentService := attachment.NewService(attachmentRepository)
	attachmentHandler := attachment.NewHandler(attachmentService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       authHandler,
		Account:    accountHandler,
		Email:      emailHandler,
		Folder:     folderHandler,
		Recipient:  recipientHandler,
		Attachment: attachmentHandler,
	}

	// Server-scoped context. Cancelled on shutdown so background goroutines
	// (rate limiter cleanup, session purge) exit with the server.
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	// Periodically sweep expired session rows. Purely hygienic: expired
	// sessions are already rejected at lookup time.
	go func() {
		ticker := time.NewTicker(auth.SessionCleanupInterval)
		defer ticker.Stop()
		for {
			if err := authService.PurgeExpiredSessions(serverCtx); err != nil {
				log.Error("session_cleanup_failed", slog.Any("error", err))
			}
			select {
			case <-serverCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

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
