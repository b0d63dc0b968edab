package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/phrazzld/studygen-api/internal/config"
	"github.com/phrazzld/studygen-api/internal/generation"
	"github.com/phrazzld/studygen-api/internal/platform/postgres"
	"github.com/phrazzld/studygen-api/internal/quota"
	"github.com/phrazzld/studygen-api/internal/service"
	"github.com/phrazzld/studygen-api/internal/service/auth"
	"github.com/phrazzld/studygen-api/internal/store"
)

// shutdownFunc releases a resource when the server stops.
type shutdownFunc func(context.Context) error

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	flashcardSetStore store.FlashcardSetStore
	quizStore         store.QuizStore
	usageStore        store.UsageStore
	tutorStore        *postgres.PostgresTutorStore

	// Services
	jwtService        auth.JWTService
	quotaGate         quota.Gate
	generationService service.GenerationService
	tutorService      service.TutorService

	// shutdowns run in reverse order during cleanup, before the database closes.
	shutdowns []shutdownFunc
}

// newApplication wires stores and services. The model client and the
// optional quota count cache are built by the caller so that tests can
// substitute them.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	model generation.ModelClient,
	cache quota.CountCache,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.flashcardSetStore = postgres.NewPostgresFlashcardSetStore(db, logger)
	app.quizStore = postgres.NewPostgresQuizStore(db, logger)
	app.tutorStore = postgres.NewPostgresTutorStore(db, logger)

	var usage store.UsageStore = postgres.NewPostgresUsageStore(db, logger)
	if cache != nil {
		ttl := time.Duration(cfg.Quota.CacheTTLSeconds) * time.Second
		usage = quota.NewCachedCounter(usage, cache, ttl, logger)
	}
	app.usageStore = usage

	app.quotaGate, err = quota.NewUsageGate(
		usage,
		cfg.Quota.Limit,
		time.Duration(cfg.Quota.WindowHours)*time.Hour,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create quota gate: %w", err)
	}

	writer := service.NewWriter(app.flashcardSetStore, app.quizStore, usage, logger)

	app.generationService, err = service.NewGenerationService(
		app.quotaGate,
		model,
		writer,
		app.flashcardSetStore,
		app.quizStore,
		nil,
		cfg.Generation,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	app.tutorService, err = service.NewTutorService(app.quotaGate, model, app.tutorStore, app.tutorStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tutor service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then cleans up.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources in reverse order of acquisition and closes the
// database last.
func (app *application) cleanup(ctx context.Context) error {
	var errs []error
	for _, shutdown := range slices.Backward(app.shutdowns) {
		if err := shutdown(ctx); err != nil {
			app.logger.Error("shutdown step failed", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	app.logger.Info("application shutdown completed")
	return errors.Join(errs...)
}
