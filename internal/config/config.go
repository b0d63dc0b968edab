package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Quota      QuotaConfig      `mapstructure:"quota" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int      `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	CORSAllowedOrigins     []string `mapstructure:"cors_allowed_origins"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name" validate:"required"`
	// ChatModelName is used for tutor conversations; empty falls back to ModelName.
	ChatModelName   string `mapstructure:"chat_model_name"`
	MaxOutputTokens int    `mapstructure:"max_output_tokens" validate:"gte=0"`
}

// GenerationConfig bounds what a single generation request may ask for.
type GenerationConfig struct {
	MaxCount        int `mapstructure:"max_count" validate:"required,gt=0"`
	QuizChoiceCount int `mapstructure:"quiz_choice_count" validate:"required,gte=2"`
}

// QuotaConfig controls the per-user generation allowance.
type QuotaConfig struct {
	Limit           int `mapstructure:"limit" validate:"required,gt=0"`
	WindowHours     int `mapstructure:"window_hours" validate:"required,gt=0"`
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// RedisConfig is optional. An empty Addr disables the quota count cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// TracingConfig selects the OpenTelemetry exporter.
type TracingConfig struct {
	Exporter    string  `mapstructure:"exporter" validate:"omitempty,oneof=none stdout"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}
