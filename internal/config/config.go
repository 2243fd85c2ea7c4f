// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

// Package config loads GeoStats configuration from built-in defaults, an
// optional YAML file and environment variables, in increasing priority.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Invalid configuration")
//	}
//	db, err := database.New(&cfg.Database)
//
// Config is immutable after Load and safe for concurrent reads.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Storage  StorageConfig  `koanf:"storage"`
	Series   SeriesConfig   `koanf:"series"`
	API      APIConfig      `koanf:"api"`
	Events   EventsConfig   `koanf:"events"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// StorageConfig controls where uploads and generated artifacts live and how
// large an upload may be.
type StorageConfig struct {
	UploadDir         string        `koanf:"upload_dir"`
	StaticDir         string        `koanf:"static_dir"`
	MaxUploadBytes    int64         `koanf:"max_upload_bytes"`
	MaxExtractedBytes int64         `koanf:"max_extracted_bytes"`
	MaxArchiveEntries int           `koanf:"max_archive_entries"`
	Retention         time.Duration `koanf:"retention"`        // 0 keeps datasets forever
	JanitorInterval   time.Duration `koanf:"janitor_interval"` // How often expired datasets are swept
}

// SeriesConfig holds time-series extraction settings.
type SeriesConfig struct {
	// Pivot is the two-digit year at or below which suffixes resolve to the
	// 2000s. -1 uses the current year modulo 100.
	Pivot int `koanf:"pivot"`
}

// APIConfig holds response shaping settings.
type APIConfig struct {
	CacheTTL    time.Duration `koanf:"cache_ttl"`
	MaxPlotRows int           `koanf:"max_plot_rows"` // Row cap for frame-based charts
	ImportRate  float64       `koanf:"import_rate"`   // Imports per second across all clients, 0 = unlimited
	ImportBurst int           `koanf:"import_burst"`
}

// EventsConfig tunes the in-process dataset event router.
type EventsConfig struct {
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
	BufferSize           int64         `koanf:"buffer_size"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, the config file (CONFIG_PATH or a
// default location) and environment variables, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
