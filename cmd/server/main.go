// Package main implements the entry point for the studygen API server, which
// turns source text into flashcard sets and quizzes and streams tutor replies
// from a language model.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/studygen-api/internal/platform/gemini"
	"github.com/phrazzld/studygen-api/internal/platform/redis"
	"github.com/phrazzld/studygen-api/internal/platform/tracing"
	"github.com/phrazzld/studygen-api/internal/quota"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status, version, reset) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads configuration and either executes a migration command or serves
// HTTP until SIGINT or SIGTERM.
func run(migrateCmd string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return runMigrations(ctx, db, migrateCmd, logger)
	}

	if err := runMigrations(ctx, db, "up", logger); err != nil {
		_ = db.Close()
		return err
	}

	var shutdowns []shutdownFunc

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, logger)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	shutdowns = append(shutdowns, shutdownFunc(shutdownTracing))

	model, err := gemini.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize language model client: %w", err)
	}

	var cache quota.CountCache
	if cfg.Redis.Addr != "" {
		redisCache, err := redis.New(ctx, cfg.Redis, logger)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		cache = redisCache
		shutdowns = append(shutdowns, func(context.Context) error { return redisCache.Close() })
	} else {
		logger.Info("redis not configured, quota counts are read from postgres on every check")
	}

	app, err := newApplication(cfg, logger, db, model, cache)
	if err != nil {
		_ = db.Close()
		return err
	}
	app.shutdowns = append(app.shutdowns, shutdowns...)

	return app.Run(ctx)
}
