// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all configuration values for the route board server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `validate:"required"`

	// BackendURL is the base URL of the remote route backend. Required.
	BackendURL string `validate:"required,url"`

	// AdminSecret gates destructive operations (delete, edit). Required —
	// there is deliberately no default so a deployment cannot ship with a
	// known secret.
	AdminSecret string `validate:"required,min=8"`

	// CacheDir is the directory for the local fallback cache files.
	// Defaults to "./data".
	CacheDir string `validate:"required"`

	// RedisAddr, when set, switches the local cache to Redis at this
	// address. Empty means the file-backed cache is used.
	RedisAddr string

	// RedisPassword is the optional password for RedisAddr.
	RedisPassword string

	// GatewayTimeout bounds each backend round trip. Defaults to 10s.
	GatewayTimeout time.Duration `validate:"gt=0"`

	// ListRetries is the number of additional attempts for the idempotent
	// route-list fetch after the first fails. Defaults to 2.
	ListRetries int `validate:"gte=0"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `validate:"oneof=debug info warn error"`

	// CORSOrigins is the list of allowed cross-origin request origins for
	// the JSON endpoints. Set CORS_ORIGINS to a comma-separated list.
	CORSOrigins []string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		BackendURL:    os.Getenv("BACKEND_URL"),
		AdminSecret:   os.Getenv("ADMIN_SECRET"),
		CacheDir:      getEnv("CACHE_DIR", "./data"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing []string
	if cfg.BackendURL == "" {
		missing = append(missing, "BACKEND_URL")
	}
	if cfg.AdminSecret == "" {
		missing = append(missing, "ADMIN_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	timeout := getEnv("GATEWAY_TIMEOUT", "10s")
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return Config{}, fmt.Errorf("invalid GATEWAY_TIMEOUT %q: %w", timeout, err)
	}
	cfg.GatewayTimeout = d

	retries := getEnv("LIST_RETRIES", "2")
	n, err := strconv.Atoi(retries)
	if err != nil || n < 0 {
		return Config{}, fmt.Errorf("invalid LIST_RETRIES %q", retries)
	}
	cfg.ListRetries = n

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
