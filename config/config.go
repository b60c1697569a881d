// Package config loads portal configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// The reference backend the portal authenticates against. Both are
	// required; Load fails without them.
	BackendURL    string `mapstructure:"BACKEND_URL"`
	BackendAPIKey string `mapstructure:"BACKEND_API_KEY"`

	// DatabaseURL is optional; when empty the in-memory storage backs
	// the local backend instead of Postgres.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	SessionMaxAge            time.Duration `mapstructure:"SESSION_MAX_AGE"`
	ProfileWait              time.Duration `mapstructure:"PROFILE_WAIT"`
	RequireEmailConfirmation bool          `mapstructure:"REQUIRE_EMAIL_CONFIRMATION"`

	CacheTTL     time.Duration `mapstructure:"CACHE_TTL"`
	CacheMaxSize int           `mapstructure:"CACHE_MAX_SIZE"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("SESSION_MAX_AGE", "24h")
	v.SetDefault("PROFILE_WAIT", "5s")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CACHE_MAX_SIZE", 10000)
	v.SetDefault("LOG_LEVEL", "info")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("BACKEND_URL")
	v.BindEnv("BACKEND_API_KEY")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("SESSION_MAX_AGE")
	v.BindEnv("PROFILE_WAIT")
	v.BindEnv("REQUIRE_EMAIL_CONFIRMATION")
	v.BindEnv("CACHE_TTL")
	v.BindEnv("CACHE_MAX_SIZE")
	v.BindEnv("LOG_LEVEL")

	// Try reading .env, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	if cfg.BackendAPIKey == "" {
		return nil, fmt.Errorf("BACKEND_API_KEY is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}
