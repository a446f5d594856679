// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

// Package config loads and validates the Docket server configuration.
//
// Configuration is layered via Koanf v2, highest priority last:
//
//  1. Built-in defaults
//  2. Config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (DOCKET_ prefix, e.g. DOCKET_SERVER_PORT=8080
//     maps to server.port; JWT_SECRET is also honored directly)
package config

import (
	"time"
)

// Config is the root configuration for the Docket server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Storage  StorageConfig  `koanf:"storage"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production". Production enables
	// strict validation of security-critical settings.
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty or ":memory:" runs in-memory.
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`

	// SeedDemoData inserts demo users and cases at startup.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	// JWTSecret signs session tokens. Minimum 32 characters in production.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout is the JWT lifetime.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `koanf:"bcrypt_cost"`

	// RateLimitReqs/RateLimitWindow configure the global API rate limit.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// LoginRateLimitReqs/LoginRateLimitWindow configure the stricter
	// per-IP limit on the login endpoint.
	LoginRateLimitReqs   int           `koanf:"login_rate_limit_reqs"`
	LoginRateLimitWindow time.Duration `koanf:"login_rate_limit_window"`

	// CORSOrigins lists allowed origins. "*" allows all.
	CORSOrigins []string `koanf:"cors_origins"`

	// CookieSecure marks the session cookie Secure. Disable only for
	// local plain-HTTP development.
	CookieSecure bool `koanf:"cookie_secure"`

	// LawyerDiscovery enables the browse-all case listing for lawyers.
	// This is a deliberate, separately-gated capability: it widens what
	// lawyers can list (redacted), never what they can access.
	LawyerDiscovery bool `koanf:"lawyer_discovery"`
}

// StorageConfig holds document blob storage settings.
type StorageConfig struct {
	// DocumentsDir is the root directory for uploaded document payloads.
	DocumentsDir string `koanf:"documents_dir"`

	// MaxUploadBytes caps a single document upload.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// AllowedMIMETypes lists accepted upload content types.
	AllowedMIMETypes []string `koanf:"allowed_mime_types"`
}

// APIConfig holds pagination settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values applied.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8480,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/docket.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Security: SecurityConfig{
			JWTSecret:            "",
			SessionTimeout:       24 * time.Hour,
			BcryptCost:           12,
			RateLimitReqs:        300,
			RateLimitWindow:      time.Minute,
			LoginRateLimitReqs:   5,
			LoginRateLimitWindow: 5 * time.Minute,
			CORSOrigins:          []string{"*"},
			CookieSecure:         true,
			LawyerDiscovery:      false,
		},
		Storage: StorageConfig{
			DocumentsDir:   "/data/documents",
			MaxUploadBytes: 25 << 20, // 25MB
			AllowedMIMETypes: []string{
				"application/pdf",
				"image/png",
				"image/jpeg",
				"text/plain",
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			},
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// IsProduction reports whether the server runs with production checks.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
