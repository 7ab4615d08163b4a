// Copyright (c) 2026 Vitrine. All rights reserved.

// Command api is the entry point for the Vitrine HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Seed the catalog when configured and empty.
//  7. Wire HTTP handlers and background workers.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/vitrineapp/vitrine/internal/admin"
	"github.com/vitrineapp/vitrine/internal/api"
	"github.com/vitrineapp/vitrine/internal/catalog/app"
	"github.com/vitrineapp/vitrine/internal/catalog/review"
	"github.com/vitrineapp/vitrine/internal/catalog/scrape"
	"github.com/vitrineapp/vitrine/internal/catalog/translate"
	"github.com/vitrineapp/vitrine/internal/catalog/urlcheck"
	"github.com/vitrineapp/vitrine/internal/platform/config"
	"github.com/vitrineapp/vitrine/internal/platform/constants"
	"github.com/vitrineapp/vitrine/internal/platform/migration"
	pgstore "github.com/vitrineapp/vitrine/internal/platform/postgres"
	redisstore "github.com/vitrineapp/vitrine/internal/platform/redis"
	"github.com/vitrineapp/vitrine/internal/platform/sec"
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

	log.Info("[Vitrine] service_initializing")

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

	// ── 6. Auth Services ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	adminService, err := admin.NewService(cfg.AdminPassword, jwtSvc, log)
	must(log, err, "initialize admin service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Background Workers ─────────────────────────────────────────────
	// Worker contexts outlive individual requests and are cancelled as part
	// of shutdown.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	appRepository := app.NewPostgresRepository(pool)

	var translator app.Translator
	var translateWorker *translate.Worker
	if cfg.TranslateEnabled && cfg.TranslateAPIKey != "" {
		client := translate.NewClient(cfg.TranslateBaseURL, cfg.TranslateAPIKey, cfg.TranslateModel)
		translateWorker = translate.NewWorker(client, appRepository, cfg.TranslateTarget, log)
		translateWorker.Start(workerCtx)
		translator = translateWorker
		log.Info("translation_worker_started", slog.String("language", cfg.TranslateTarget))
	}

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	appCache := app.NewCache(rdb, log)
	appService := app.NewService(appRepository, appCache, cfg.Categories(), translator, log)
	appHandler := app.NewHandler(appService, app.NewLogoResolver())

	reviewRepository := review.NewPostgresRepository(pool)
	reviewService := review.NewService(reviewRepository, appCache, log)
	reviewHandler := review.NewHandler(reviewService)

	scrapeHandler := scrape.NewHandler(scrape.NewScraper(log))
	adminHandler := admin.NewHandler(adminService)

	if cfg.SeedOnStartup {
		must(log, appService.SeedIfEmpty(startupCtx), "seed catalog")
	}

	urlChecker := urlcheck.NewChecker(appRepository, cfg.URLCheckSchedule, log)
	must(log, urlChecker.Start(workerCtx), "start url checker")

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		App:       appHandler,
		Review:    reviewHandler,
		Scrape:    scrapeHandler,
		Admin:     adminHandler,
	}

	server := api.NewServer(workerCtx, cfg, log, jwtSvc, handlers)

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

	urlChecker.Stop()
	workerCancel()
	if translateWorker != nil {
		translateWorker.Stop()
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
