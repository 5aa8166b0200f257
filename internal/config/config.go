// Package config loads server configuration from flags, environment
// variables, an optional .env file and defaults, in that order of precedence.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Store   StoreConfig
	Catalog CatalogConfig
	Auth    AuthConfig
	Reviews ReviewConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string        // default 5000
	ReadTimeout        time.Duration // default 15s
	WriteTimeout       time.Duration // default 15s
	IdleTimeout        time.Duration // default 60s
	CORSAllowedOrigins []string      // default "*"
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string
	// DataPath is where badger/sqlite files and the auth key live.
	// Empty keeps everything in memory for the life of the process.
	DataPath string
}

// CatalogConfig controls where the book catalog comes from.
type CatalogConfig struct {
	Path  string // empty uses the embedded seed
	Watch bool   // reload Path when it changes
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	AccessTokenDuration    time.Duration
	SessionCleanupInterval time.Duration
	RateLimitPerMinute     int // register/login requests per client IP; 0 disables
}

// ReviewConfig holds review behavior knobs.
type ReviewConfig struct {
	// DeleteDelay runs before a review delete is applied. Zero disables it.
	DeleteDelay time.Duration
}

// Load parses args (usually os.Args[1:]) and the environment into a Config.
//
// Precedence, highest first:
//  1. Command-line flags.
//  2. Environment variables.
//  3. .env file.
//  4. Default values.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("bookshelf-api", pflag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	port := fs.String("port", "", "Server port (default: 5000)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-allowed-origins", "", "Comma-separated CORS origins (default: *)")

	backend := fs.String("store", "", "Store backend: memory, badger, sqlite (default: memory)")
	dataPath := fs.String("data-path", "", "Directory for persistent data (default: in-memory)")

	catalogPath := fs.String("catalog", "", "Path to a catalog JSON file (default: built-in seed)")
	catalogWatch := fs.String("catalog-watch", "", "Reload the catalog file when it changes (default: true)")

	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (default: 1h)")
	cleanupInterval := fs.String("session-cleanup-interval", "", "Expired session sweep interval (default: 10m)")
	rateLimit := fs.String("auth-rate-limit", "", "Register/login requests per minute per IP (default: 30)")

	deleteDelay := fs.String("review-delete-delay", "", "Delay before a review delete is applied (default: 0s)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env is fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:               getConfigValue(*port, "SERVER_PORT", "5000"),
			CORSAllowedOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getConfigValue(*backend, "STORE_BACKEND", BackendMemory)),
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Catalog: CatalogConfig{
			Path:  getConfigValue(*catalogPath, "CATALOG_PATH", ""),
			Watch: getBoolConfigValue(*catalogWatch, "CATALOG_WATCH", true),
		},
	}

	var err error
	if cfg.Auth.RateLimitPerMinute, err = getIntConfigValue(*rateLimit, "AUTH_RATE_LIMIT", 30); err != nil {
		return nil, err
	}

	durations := []struct {
		dst      *time.Duration
		flag     string
		envKey   string
		fallback string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Auth.AccessTokenDuration, *accessTokenDuration, "ACCESS_TOKEN_DURATION", "1h"},
		{&cfg.Auth.SessionCleanupInterval, *cleanupInterval, "SESSION_CLEANUP_INTERVAL", "10m"},
		{&cfg.Reviews.DeleteDelay, *deleteDelay, "REVIEW_DELETE_DELAY", "0s"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.fallback)
		v, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = v
	}

	if cfg.Store.DataPath, err = expandPath(cfg.Store.DataPath); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if cfg.Catalog.Path, err = expandPath(cfg.Catalog.Path); err != nil {
		return nil, fmt.Errorf("invalid catalog path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and consistent.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Store.Backend {
	case BackendMemory, BackendBadger, BackendSQLite:
	default:
		return fmt.Errorf("invalid store backend: %s (must be memory, badger, or sqlite)", c.Store.Backend)
	}

	if c.Server.Port == "" {
		return errors.New("SERVER_PORT is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}

	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("ACCESS_TOKEN_DURATION must be positive")
	}
	if c.Auth.SessionCleanupInterval <= 0 {
		return errors.New("SESSION_CLEANUP_INTERVAL must be positive")
	}
	if c.Auth.RateLimitPerMinute < 0 {
		return errors.New("AUTH_RATE_LIMIT cannot be negative")
	}
	if c.Reviews.DeleteDelay < 0 {
		return errors.New("REVIEW_DELETE_DELAY cannot be negative")
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// expandPath expands ~ and makes a non-empty path absolute.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return filepath.Clean(abs), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (any case) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	v := strings.ToLower(getConfigValue(flagValue, envKey, ""))
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1" || v == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	v := getConfigValue(flagValue, envKey, "")
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from path into the environment.
// Variables already set in the environment win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- path comes from the operator
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
