// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

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
  - DI-Friendly: Passed to core components (DB, Redis, TokenService) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/phamminhduc/bazario/internal/platform/sec"
)

// # Configuration Schema

// Config holds all runtime configuration for the Bazario API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis): single-use secrets and rate-limit windows.
	RedisURL string `env:"REDIS_URL,required"`

	// JWTSecret signs both access and refresh tokens (HS256). The process
	// refuses to start when it is absent or shorter than 32 bytes.
	JWTSecret string `env:"JWT_SECRET,required"`

	// Outbound email delivery
	MailerDriver   string `env:"MAILER_DRIVER"   envDefault:"log"` // log | smtp | mailgun
	MailFrom       string `env:"MAIL_FROM"       envDefault:"no-reply@bazario.app"`
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       string `env:"SMTP_PORT"       envDefault:"587"`
	SMTPUsername   string `env:"SMTP_USERNAME"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	MailgunDomain  string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey  string `env:"MAILGUN_API_KEY"`

	// PublicBaseURL is the externally visible origin used in emailed links.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// ExtraOrigins lists additional exact origins allowed by CORS in
	// production, on top of the default bazario.app suffix match.
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// Loading fails — and therefore startup fails — when a required variable is
// missing or the signing secret is too short. This is deliberate: a process
// with a weak signing secret must never serve traffic.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate applies constraints that tags alone cannot express.
func (c *Config) validate() error {
	if len(c.JWTSecret) < sec.MinSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes, got %d", sec.MinSecretLength, len(c.JWTSecret))
	}

	switch c.MailerDriver {
	case "log", "smtp", "mailgun":
	default:
		return fmt.Errorf("config: unknown MAILER_DRIVER %q (expected log, smtp, or mailgun)", c.MailerDriver)
	}

	if c.MailerDriver == "mailgun" && (c.MailgunDomain == "" || c.MailgunAPIKey == "") {
		return fmt.Errorf("config: MAILGUN_DOMAIN and MAILGUN_API_KEY are required for the mailgun driver")
	}

	if c.MailerDriver == "smtp" && c.SMTPHost == "" {
		return fmt.Errorf("config: SMTP_HOST is required for the smtp driver")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ExtraAllowedOrigins returns the additional CORS origins from EXTRA_ORIGINS.
func (c *Config) ExtraAllowedOrigins() []string {
	return c.ExtraOrigins
}
