// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/docket/config.yaml",
	"/etc/docket/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces environment overrides: DOCKET_SERVER_PORT → server.port.
const envPrefix = "DOCKET_"

// Load builds the configuration from defaults, config file, and environment,
// then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load config defaults: %w", err)
	}

	// Layer 2: config file, if one exists
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}
	applyDirectEnvOverrides(k)

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps DOCKET_SECURITY_JWT_SECRET to security.jwt_secret.
// Only the first underscore separates the section from the key; the rest
// of the name is the key itself (keys use snake_case).
func envTransform(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, envPrefix))
	parts := strings.SplitN(name, "_", 2)
	if len(parts) != 2 {
		return name
	}
	return parts[0] + "." + parts[1]
}

// applyDirectEnvOverrides honors the short-form variables used in
// deployment docs, without the DOCKET_ prefix.
func applyDirectEnvOverrides(k *koanf.Koanf) {
	direct := map[string]string{
		"JWT_SECRET": "security.jwt_secret",
		"LOG_LEVEL":  "logging.level",
		"LOG_FORMAT": "logging.format",
	}
	for envName, key := range direct {
		if v := os.Getenv(envName); v != "" {
			_ = k.Set(key, v) //nolint:errcheck // Set on a scalar key cannot fail
		}
	}
}
