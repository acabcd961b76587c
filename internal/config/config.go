package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

const DefaultTerminalBaseURL = "https://api.terminal.shop"

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Terminal    TerminalConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Enabled reports whether a database was configured. Without one the
// invocation ledger and gateway key auth are switched off.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type TerminalConfig struct {
	BaseURL     string
	BearerToken string
	Timeout     time.Duration
	MaxAttempts int
	RetryBase   time.Duration
	RetryMax    time.Duration
	RateLimit   float64
	RateBurst   int
}

// HasToken is what gets logged in place of the credential.
func (c TerminalConfig) HasToken() bool {
	return c.BearerToken != ""
}

// CallBudget is the longest one upstream call can take across all attempts
// and the backoff between them. Zero when no timeout is configured.
func (c TerminalConfig) CallBudget() time.Duration {
	if c.Timeout <= 0 {
		return 0
	}
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return c.Timeout*time.Duration(attempts) + c.RetryMax*time.Duration(attempts-1)
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigName(".env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TERMINAL_BASE_URL", DefaultTerminalBaseURL)

	// Read from environment variables
	v.AutomaticEnv()

	// Try to read .env file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeout, err := durationOrDefault(v, "TERMINAL_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, err
	}
	retryBase, err := durationOrDefault(v, "TERMINAL_RETRY_BASE", 200*time.Millisecond)
	if err != nil {
		return nil, err
	}
	retryMax, err := durationOrDefault(v, "TERMINAL_RETRY_MAX", 2*time.Second)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := intOrDefault(v, "TERMINAL_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	rateBurst, err := intOrDefault(v, "TERMINAL_RATE_BURST", 5)
	if err != nil {
		return nil, err
	}
	rateLimit, err := strconv.ParseFloat(getEnvOrViper(v, "TERMINAL_RATE_LIMIT", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TERMINAL_RATE_LIMIT: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper(v, "PORT", "8080"),
		Environment: getEnvOrViper(v, "ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper(v, "DB_HOST", ""),
			Port:     getEnvOrViper(v, "DB_PORT", "5432"),
			User:     getEnvOrViper(v, "DB_USER", "postgres"),
			Password: getEnvOrViper(v, "DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper(v, "DB_NAME", "shopgateway"),
			SSLMode:  getEnvOrViper(v, "DB_SSLMODE", "disable"),
		},
		Terminal: TerminalConfig{
			BaseURL:     getEnvOrViper(v, "TERMINAL_BASE_URL", DefaultTerminalBaseURL),
			BearerToken: getEnvOrViper(v, "TERMINAL_BEARER_TOKEN", ""),
			Timeout:     timeout,
			MaxAttempts: maxAttempts,
			RetryBase:   retryBase,
			RetryMax:    retryMax,
			RateLimit:   rateLimit,
			RateBurst:   rateBurst,
		},
		LogLevel: getEnvOrViper(v, "LOG_LEVEL", "info"),
	}

	// Validate required fields
	if !cfg.Terminal.HasToken() {
		return nil, fmt.Errorf("TERMINAL_BEARER_TOKEN is required")
	}
	if cfg.Terminal.MaxAttempts < 1 {
		return nil, fmt.Errorf("TERMINAL_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func getEnvOrViper(v *viper.Viper, key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if v.IsSet(key) {
		if val := v.GetString(key); val != "" {
			return val
		}
	}
	return defaultValue
}

func durationOrDefault(v *viper.Viper, key string, def time.Duration) (time.Duration, error) {
	raw := getEnvOrViper(v, key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intOrDefault(v *viper.Viper, key string, def int) (int, error) {
	raw := getEnvOrViper(v, key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
