// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// minJWTSecretLen is the minimum secret length accepted in production.
const minJWTSecretLen = 32

// Validate checks the configuration for values that would make the server
// insecure or non-functional. Development mode relaxes the secret-length
// requirement but never the structural checks.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required (set JWT_SECRET)")
	}
	if c.IsProduction() && len(c.Security.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("security.jwt_secret must be at least %d characters in production", minJWTSecretLen)
	}

	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("security.session_timeout must be positive")
	}

	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > 20 {
		return fmt.Errorf("security.bcrypt_cost must be between %d and 20, got %d", bcrypt.MinCost, c.Security.BcryptCost)
	}

	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("storage.max_upload_bytes must be positive")
	}
	if c.Storage.DocumentsDir == "" {
		return fmt.Errorf("storage.documents_dir is required")
	}

	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("api.default_page_size must be between 1 and api.max_page_size (%d)", c.API.MaxPageSize)
	}

	return nil
}
