package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load,
// e.g. CAREPLAN_SERVER_PORT for server.port.
const EnvPrefix = "CAREPLAN"

// keys without defaults still need binding so AutomaticEnv sees them on Unmarshal.
var boundKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"auth.client_id",
	"auth.client_secret_hash",
	"llm.gemini_api_key",
	"llm.prompt_template_path",
}

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over file values.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches for
// config.yaml in the working directory and tolerates its absence.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Database.Driver == "postgres" && c.Database.URL == "" {
		return errors.New("config validation failed: database.url is required for the postgres driver")
	}

	if c.Auth.Enabled {
		switch {
		case c.Auth.JWTSecret == "":
			return errors.New("config validation failed: auth.jwt_secret is required when auth is enabled")
		case c.Auth.ClientID == "":
			return errors.New("config validation failed: auth.client_id is required when auth is enabled")
		case c.Auth.ClientSecretHash == "":
			return errors.New("config validation failed: auth.client_secret_hash is required when auth is enabled")
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.request_timeout_seconds", 60)

	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.max_attempts", 4)
	v.SetDefault("task.backoff_base_millis", 1000)
	v.SetDefault("task.stuck_task_age_minutes", 30)
	v.SetDefault("task.sweep_interval_seconds", 60)
}
