// Package config loads the client's configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/edubase/edubase-client/internal/infrastructure/credentials"
	"github.com/edubase/edubase-client/pkg/retry"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config holds all client configuration.
type Config struct {
	// Application
	App AppConfig

	// EduBase platform API
	API APIConfig

	// Credential storage
	Credentials CredentialsConfig

	// Logging
	Logging LoggingConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string
}

// APIConfig holds connection settings for the platform API.
type APIConfig struct {
	// BaseURL of the backend, e.g. http://127.0.0.1:8000
	BaseURL string

	// Timeout is the fixed per-request upper bound.
	Timeout time.Duration

	// Retry settings for transient transport failures (GET only).
	Retry retry.Config
}

// CredentialsConfig holds token storage settings.
type CredentialsConfig struct {
	// TokenFile is where the bearer credential is persisted.
	// Defaults to <user config dir>/edubase/token.
	TokenFile string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level: debug, info, warn, error
	Level string

	// Format: text or json
	Format string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("EDUBASE_APP_NAME", "edubase-client"),
			Environment: Environment(getEnv("EDUBASE_ENV", string(EnvDevelopment))),
			Debug:       getEnvBool("EDUBASE_DEBUG", false),
			Version:     getEnv("EDUBASE_VERSION", "dev"),
		},
		API: APIConfig{
			BaseURL: getEnv("EDUBASE_API_URL", "http://127.0.0.1:8000"),
			Timeout: getEnvDuration("EDUBASE_API_TIMEOUT", 15*time.Second),
			Retry: retry.Config{
				MaxAttempts:  getEnvInt("EDUBASE_API_RETRY_ATTEMPTS", 3),
				InitialDelay: getEnvDuration("EDUBASE_API_RETRY_DELAY", 100*time.Millisecond),
				MaxDelay:     getEnvDuration("EDUBASE_API_RETRY_MAX_DELAY", 5*time.Second),
				Multiplier:   2.0,
				JitterFactor: 0.1,
			},
		},
		Credentials: CredentialsConfig{
			TokenFile: getEnv("EDUBASE_TOKEN_FILE", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("EDUBASE_LOG_LEVEL", "info"),
			Format: getEnv("EDUBASE_LOG_FORMAT", "text"),
		},
	}

	if cfg.Credentials.TokenFile == "" {
		path, err := credentials.DefaultTokenPath()
		if err != nil {
			return nil, fmt.Errorf("credentials config: %w", err)
		}
		cfg.Credentials.TokenFile = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q", c.API.BaseURL)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}

	switch c.App.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", c.App.Environment)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	return nil
}

// IsDevelopment reports whether the client runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
