// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/minishop-go/internal/scheduler"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"MINISHOP_DB_PATH" envDefault:"./data/minishop.db"`
	SessionSecret string `env:"MINISHOP_SESSION_SECRET,required"`
	ServerHost    string `env:"MINISHOP_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"MINISHOP_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"MINISHOP_ENV" envDefault:"development"`
	LogLevel      string `env:"MINISHOP_LOG_LEVEL" envDefault:"info"`

	// Product image disk
	StorageDir       string `env:"MINISHOP_STORAGE_DIR" envDefault:"./storage"`
	StorageURLPrefix string `env:"MINISHOP_STORAGE_URL_PREFIX" envDefault:"/storage"`

	// Background jobs; a value of "off" disables the job
	OrphanSweepSpec string        `env:"MINISHOP_ORPHAN_SWEEP_SPEC" envDefault:"@hourly"`
	OrphanGrace     time.Duration `env:"MINISHOP_ORPHAN_GRACE" envDefault:"1h"`
	EventPruneSpec  string        `env:"MINISHOP_EVENT_PRUNE_SPEC" envDefault:"@daily"`
	EventRetention  time.Duration `env:"MINISHOP_EVENT_RETENTION" envDefault:"2160h"`

	// Seeding configuration
	DoSeed bool `env:"MINISHOP_DO_SEED" envDefault:"false"` // Insert fixture users and products into an empty database
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// JobDisabled is the cron spec value that turns a background job off.
const JobDisabled = "off"

// Scheduler returns the background job settings.
func (c Config) Scheduler() scheduler.Config {
	return scheduler.Config{
		OrphanSweepSpec: jobSpec(c.OrphanSweepSpec),
		OrphanGrace:     c.OrphanGrace,
		EventPruneSpec:  jobSpec(c.EventPruneSpec),
		EventRetention:  c.EventRetention,
	}
}

func jobSpec(spec string) string {
	spec = strings.TrimSpace(spec)
	if strings.EqualFold(spec, JobDisabled) {
		return ""
	}
	return spec
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("MINISHOP_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, errors.New("MINISHOP_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("MINISHOP_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.Env != "development" && cfg.Env != "production" {
		return nil, fmt.Errorf("MINISHOP_ENV must be development or production, got %q", cfg.Env)
	}
	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("MINISHOP_SERVER_PORT out of range: %d", cfg.ServerPort)
	}
	if err := scheduler.ValidateSpec(jobSpec(cfg.OrphanSweepSpec)); err != nil {
		return nil, fmt.Errorf("MINISHOP_ORPHAN_SWEEP_SPEC: %w", err)
	}
	if err := scheduler.ValidateSpec(jobSpec(cfg.EventPruneSpec)); err != nil {
		return nil, fmt.Errorf("MINISHOP_EVENT_PRUNE_SPEC: %w", err)
	}
	if cfg.OrphanGrace < 0 || cfg.EventRetention < 0 {
		return nil, errors.New("MINISHOP_ORPHAN_GRACE and MINISHOP_EVENT_RETENTION must not be negative")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
