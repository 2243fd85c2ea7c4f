// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks the configuration for out-of-range or inconsistent values.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateStorage,
		c.validateSeries,
		c.validateAPI,
		c.validateEvents,
		c.validateRateLimits,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be 0 (auto) or positive")
	}
	return nil
}

// Upload limits
const (
	minUploadBytes = 1 << 10  // 1 KiB
	maxUploadBytes = 16 << 30 // 16 GiB
)

func (c *Config) validateStorage() error {
	s := c.Storage
	if s.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if s.StaticDir == "" {
		return fmt.Errorf("STATIC_DIR is required")
	}
	if s.MaxUploadBytes < minUploadBytes || s.MaxUploadBytes > maxUploadBytes {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be between %d and %d", minUploadBytes, maxUploadBytes)
	}
	if s.MaxExtractedBytes < s.MaxUploadBytes {
		return fmt.Errorf("MAX_EXTRACTED_BYTES must be at least MAX_UPLOAD_BYTES")
	}
	if s.MaxArchiveEntries < 1 {
		return fmt.Errorf("MAX_ARCHIVE_ENTRIES must be positive")
	}
	if s.Retention < 0 {
		return fmt.Errorf("DATASET_RETENTION must not be negative")
	}
	if s.Retention > 0 && s.JanitorInterval < time.Second {
		return fmt.Errorf("JANITOR_INTERVAL must be at least 1s when DATASET_RETENTION is set")
	}
	return nil
}

func (c *Config) validateSeries() error {
	if c.Series.Pivot < -1 || c.Series.Pivot > 99 {
		return fmt.Errorf("SERIES_PIVOT_YEAR must be -1 (current year) or between 0 and 99")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.CacheTTL < 0 {
		return fmt.Errorf("API_CACHE_TTL must not be negative")
	}
	if c.API.MaxPlotRows < 1 {
		return fmt.Errorf("API_MAX_PLOT_ROWS must be positive")
	}
	if c.API.ImportRate < 0 {
		return fmt.Errorf("API_IMPORT_RATE must not be negative")
	}
	if c.API.ImportRate > 0 && c.API.ImportBurst < 1 {
		return fmt.Errorf("API_IMPORT_BURST must be positive when API_IMPORT_RATE is set")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.RetryCount < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must not be negative")
	}
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("EVENTS_BUFFER_SIZE must not be negative")
	}
	return nil
}

// Rate limit bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// ShouldWarnAboutCORS reports whether wildcard CORS is configured in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
