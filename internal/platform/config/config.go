// Copyright (c) 2026 Vitrine. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Vitrine API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// SessionSecret signs admin access tokens (HS256). Must be >= 32 bytes.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// AdminPassword gates the admin login endpoint. It is bcrypt-hashed at
	// startup so the plain text never lives beyond process initialization.
	AdminPassword string `env:"ADMIN_PASSWORD,required"`

	// CategoryAllowlist is the comma-separated set of categories accepted on
	// app submission. Displayed categories are derived from stored data, so
	// this list can grow without a schema migration.
	CategoryAllowlist string `env:"CATEGORY_ALLOWLIST" envDefault:"AI,Productivity,Design,Games,Development,Social,Other"`

	// SeedOnStartup loads the bundled seed catalog when the store is empty.
	SeedOnStartup bool `env:"SEED_ON_STARTUP" envDefault:"false"`

	// Description translation (optional, off by default)
	TranslateEnabled bool   `env:"TRANSLATE_ENABLED" envDefault:"false"`
	TranslateBaseURL string `env:"TRANSLATE_BASE_URL" envDefault:"https://api.openai.com/v1"`
	TranslateAPIKey  string `env:"TRANSLATE_API_KEY"`
	TranslateModel   string `env:"TRANSLATE_MODEL"   envDefault:"gpt-4o-mini"`
	TranslateTarget  string `env:"TRANSLATE_TARGET_LANGUAGE" envDefault:"French"`

	// URL checker sweep (cron spec; empty disables the sweep)
	URLCheckSchedule string `env:"URL_CHECK_SCHEDULE" envDefault:"@every 6h"`

	// ExtraOrigins lists additional exact origins allowed by CORS in
	// production, comma-separated (e.g. staging frontends).
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// Categories returns the parsed allow-list, trimmed and with empties removed.
func (c *Config) Categories() []string {
	parts := strings.Split(c.CategoryAllowlist, ",")
	categories := make([]string, 0, len(parts))
	for _, part := range parts {
		if clean := strings.TrimSpace(part); clean != "" {
			categories = append(categories, clean)
		}
	}
	return categories
}

// AllowedOrigins returns the parsed EXTRA_ORIGINS list, trimmed and with
// empties removed.
func (c *Config) AllowedOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}
	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if clean := strings.TrimSpace(part); clean != "" {
			origins = append(origins, clean)
		}
	}
	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
