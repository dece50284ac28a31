// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// ErrMissingSecret is returned when JWT_SECRET is unset for a persistent backend.
var ErrMissingSecret = errors.New("JWT_SECRET is required unless STORAGE_BACKEND=memory")

// devSecret signs tokens in memory mode when no JWT_SECRET is given.
const devSecret = "equishare-dev-secret"

// Config holds every setting the server reads at startup.
type Config struct {
	Port           int
	StorageBackend string
	DBPath         string
	DatabaseURL    string

	JWTSecret     string
	TokenDuration time.Duration

	// SplitTolerance is the accepted drift between an expense amount and
	// the sum of its splits, in minor units.
	SplitTolerance    int64
	EnforceMembership bool

	// AllowedOrigins is the CORS allow list. Empty means any origin.
	AllowedOrigins []string

	LogLevel  string
	LogFormat string
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads the environment. It fails on malformed values rather than
// falling back to defaults.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	getEnv := func(key, fallback string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBPath:      getEnv("DB_PATH", "./data/equishare.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	for _, origin := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil || cfg.Port <= 0 {
		return Config{}, fmt.Errorf("invalid PORT %q", getenv("PORT"))
	}
	if cfg.TokenDuration, err = time.ParseDuration(getEnv("TOKEN_DURATION", "24h")); err != nil || cfg.TokenDuration <= 0 {
		return Config{}, fmt.Errorf("invalid TOKEN_DURATION %q", getenv("TOKEN_DURATION"))
	}
	if cfg.SplitTolerance, err = strconv.ParseInt(getEnv("SPLIT_TOLERANCE_MINOR", "1"), 10, 64); err != nil || cfg.SplitTolerance < 0 {
		return Config{}, fmt.Errorf("invalid SPLIT_TOLERANCE_MINOR %q", getenv("SPLIT_TOLERANCE_MINOR"))
	}
	if cfg.EnforceMembership, err = strconv.ParseBool(getEnv("ENFORCE_MEMBERSHIP", "true")); err != nil {
		return Config{}, fmt.Errorf("invalid ENFORCE_MEMBERSHIP %q", getenv("ENFORCE_MEMBERSHIP"))
	}

	backend := BackendSQLite
	if cfg.DatabaseURL != "" {
		backend = BackendPostgres
	}
	cfg.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", backend))
	switch cfg.StorageBackend {
	case BackendSQLite, BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("STORAGE_BACKEND=postgres needs DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.JWTSecret == "" {
		if cfg.StorageBackend != BackendMemory {
			return Config{}, ErrMissingSecret
		}
		cfg.JWTSecret = devSecret
	}
	return cfg, nil
}
