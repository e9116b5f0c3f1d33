// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

// Package config loads layered service configuration: built-in
// defaults, then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/tablepick/tablepick/internal/logging"
	"github.com/tablepick/tablepick/internal/places"
	"github.com/tablepick/tablepick/internal/recommend"
	"github.com/tablepick/tablepick/internal/storage"
)

// Config is the root service configuration.
type Config struct {
	// Server holds HTTP server settings.
	Server ServerConfig `json:"server" koanf:"server"`

	// Recommend holds recommendation engine tunables.
	Recommend recommend.Config `json:"recommend" koanf:"recommend"`

	// Storage holds BadgerDB settings.
	Storage storage.Config `json:"storage" koanf:"storage"`

	// Places holds live place-search settings.
	Places places.Config `json:"places" koanf:"places"`

	// Logging holds log level and format.
	Logging logging.Config `json:"logging" koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `json:"host" koanf:"host"`

	// Port is the listen port.
	Port int `json:"port" koanf:"port"`

	// Timeout bounds request read/write durations.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`

	// RateLimitReqs is the per-IP request allowance per window.
	RateLimitReqs int `json:"rate_limit_reqs" koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration `json:"rate_limit_window" koanf:"rate_limit_window"`

	// CORSOrigins lists allowed cross-origin hosts.
	CORSOrigins []string `json:"cors_origins" koanf:"cors_origins"`
}

// defaultConfig returns a Config with all defaults applied. Defaults
// are layered first, then overridden by file and environment values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8420,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Recommend: *recommend.DefaultConfig(),
		Storage:   *storage.DefaultConfig(),
		Places:    *places.DefaultConfig(),
		Logging:   logging.DefaultConfig(),
	}
}

// Validate checks the full configuration tree.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Places.Validate(); err != nil {
		return fmt.Errorf("places: %w", err)
	}
	return nil
}
