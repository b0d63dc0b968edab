package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/studygen-api/internal/config"
)

// loadAppConfig loads the application configuration from environment
// variables, an optional .env file and an optional config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// logConfigSummary records non-secret configuration at startup.
func logConfigSummary(cfg *config.Config, logger *slog.Logger) {
	logger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("model", cfg.LLM.ModelName),
		slog.Int("max_count", cfg.Generation.MaxCount),
		slog.Int("quota_limit", cfg.Quota.Limit),
		slog.Int("quota_window_hours", cfg.Quota.WindowHours),
		slog.Bool("redis_enabled", cfg.Redis.Addr != ""),
		slog.String("trace_exporter", cfg.Tracing.Exporter))

	logger.Debug("secrets present",
		slog.Bool("database_url", cfg.Database.URL != ""),
		slog.Bool("jwt_secret", cfg.Auth.JWTSecret != ""),
		slog.Bool("gemini_api_key", cfg.LLM.GeminiAPIKey != ""))
}
