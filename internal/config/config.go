// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

// Package config loads and validates Seertall configuration using Koanf v2
// with layered sources: built-in defaults, an optional YAML config file, and
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Seertall server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB fact store settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" opens an in-memory store.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads limits DuckDB worker threads; 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// CacheConfig holds query cache store settings.
type CacheConfig struct {
	// Enabled toggles the cache-aside layer. Queries always work without it.
	Enabled bool `koanf:"enabled"`
	// Path is the Badger directory for the persistent cache store. Empty
	// selects the in-memory store.
	Path string `koanf:"path"`
	// TTL is the fixed expiry applied to every cached query result.
	TTL time.Duration `koanf:"ttl"`
}

// APIConfig holds request paging limits for the top-series query.
type APIConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.API.DefaultLimit < 1 || c.API.DefaultLimit > c.API.MaxLimit {
		return fmt.Errorf("api.default_limit must be between 1 and api.max_limit (%d), got %d",
			c.API.MaxLimit, c.API.DefaultLimit)
	}
	if c.API.MaxLimit < 1 {
		return fmt.Errorf("api.max_limit must be at least 1, got %d", c.API.MaxLimit)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
