package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// The memory driver keeps everything in process and ignores the URL.
type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL                    string `mapstructure:"url" validate:"omitempty,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
	MigrateOnStart         bool   `mapstructure:"migrate_on_start"`
}

// AuthConfig contains API authentication settings. When disabled, the API is
// open and no token endpoint is mounted.
type AuthConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	JWTSecret            string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0,lte=1440"`
	ClientID             string `mapstructure:"client_id"`
	ClientSecretHash     string `mapstructure:"client_secret_hash"`
}

// LLMConfig contains the generation provider settings. An empty API key
// selects the local placeholder generator.
type LLMConfig struct {
	GeminiAPIKey          string  `mapstructure:"gemini_api_key"`
	ModelName             string  `mapstructure:"model_name" validate:"required"`
	Temperature           float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	PromptTemplatePath    string  `mapstructure:"prompt_template_path"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// TaskConfig contains the generation worker settings.
type TaskConfig struct {
	QueueSize            int `mapstructure:"queue_size" validate:"gt=0"`
	WorkerCount          int `mapstructure:"worker_count" validate:"gt=0"`
	MaxAttempts          int `mapstructure:"max_attempts" validate:"gt=0,lte=10"`
	BackoffBaseMillis    int `mapstructure:"backoff_base_millis" validate:"gte=0"`
	StuckTaskAgeMinutes  int `mapstructure:"stuck_task_age_minutes" validate:"gt=0"`
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds" validate:"gt=0"`
}

// BackoffBase is the first retry delay.
func (c TaskConfig) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseMillis) * time.Millisecond
}

// StuckTaskAge is how long a plan may stay processing before the sweep
// resets it.
func (c TaskConfig) StuckTaskAge() time.Duration {
	return time.Duration(c.StuckTaskAgeMinutes) * time.Minute
}

// SweepInterval is how often the runner sweeps for stale records.
func (c TaskConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// RequestTimeout is the per-call timeout of the generation provider.
func (c LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
