// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

/*
database_extensions.go - DuckDB Extension Installation

GeoStats needs one extension, spatial, which provides ST_Read (GDAL) for
shapefiles, ST_Transform (PROJ) for reprojection and the ST_* measures used
by dataset summaries.

Installation Strategy:
 1. Try LOAD spatial (already installed)
 2. Try INSTALL spatial, then LOAD
 3. Try FORCE INSTALL spatial, then LOAD
 4. If DUCKDB_SPATIAL_OPTIONAL=true and all fail, start without spatial;
    imports then fail with ErrSpatialUnavailable

Environment Variables:
  - DUCKDB_SPATIAL_OPTIONAL=true: Allow startup without spatial (testing only)
  - DUCKDB_EXTENSION_TIMEOUT: Hard timeout per extension statement (default 30s)
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/tomtom215/geostats/internal/logging"
)

// extensionTimeout is the hard timeout for extension statements. CGO calls
// don't respect context cancellation, so the timeout is enforced by select.
var extensionTimeout = getExtensionTimeout()

// extensionRetryConfig controls retry behavior for extension operations
type extensionRetryConfig struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	BackoffMult float64
}

var defaultRetryConfig = extensionRetryConfig{
	MaxRetries:  3,
	BaseDelay:   2 * time.Second,
	MaxDelay:    30 * time.Second,
	BackoffMult: 2.0,
}

func getExtensionTimeout() time.Duration {
	if timeoutStr := os.Getenv("DUCKDB_EXTENSION_TIMEOUT"); timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil && d > 0 {
			return d
		}
	}
	return 30 * time.Second
}

// duckdbVersion is the DuckDB version used for extension paths.
// Must match the duckdb-go-bindings version in go.mod.
const duckdbVersion = "v1.4.3"

// isExtensionInstalledLocally reports whether the extension file exists in
// ~/.duckdb/extensions/{version}/{platform}/.
func isExtensionInstalledLocally(extensionName string) bool {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	platform := runtime.GOOS + "_" + runtime.GOARCH
	extPath := filepath.Join(homeDir, ".duckdb", "extensions", duckdbVersion, platform, extensionName+".duckdb_extension")
	_, err = os.Stat(extPath)
	return err == nil
}

func extensionContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), extensionTimeout)
}

// execWithHardTimeout executes a statement with a goroutine-based timeout.
func (db *DB) execWithHardTimeout(query string) error {
	resultCh := make(chan error, 1)

	ctx, cancel := extensionContext()
	defer cancel()

	go func() {
		_, err := db.conn.ExecContext(ctx, query)
		resultCh <- err
	}()

	select {
	case err := <-resultCh:
		return err
	case <-time.After(extensionTimeout):
		return fmt.Errorf("operation timed out after %v", extensionTimeout)
	}
}

// queryRowWithHardTimeout scans a single value with a goroutine-based timeout.
func (db *DB) queryRowWithHardTimeout(query string) (any, error) {
	type queryResult struct {
		value any
		err   error
	}
	resultCh := make(chan queryResult, 1)

	ctx, cancel := extensionContext()
	defer cancel()

	go func() {
		var result any
		err := db.conn.QueryRowContext(ctx, query).Scan(&result)
		resultCh <- queryResult{value: result, err: err}
	}()

	select {
	case r := <-resultCh:
		return r.value, r.err
	case <-time.After(extensionTimeout):
		return nil, fmt.Errorf("query timed out after %v", extensionTimeout)
	}
}

// execWithRetry retries transient failures (timeouts, refused connections,
// 503s) with exponential backoff.
func (db *DB) execWithRetry(query string, cfg extensionRetryConfig) error {
	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			logging.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Str("query", query).
				Msg("Retrying extension operation")
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * cfg.BackoffMult)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		err := db.execWithHardTimeout(query)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryableExtensionError(err) {
			return err
		}

		logging.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", cfg.MaxRetries+1).
			Msg("Extension operation failed, will retry")
	}

	return fmt.Errorf("extension operation failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

func isRetryableExtensionError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "temporary failure")
}

// installExtensions loads the extensions GeoStats needs. It fails unless
// DUCKDB_SPATIAL_OPTIONAL=true.
func (db *DB) installExtensions() error {
	optional := os.Getenv("DUCKDB_SPATIAL_OPTIONAL") == "true"
	return db.installSpatial(optional)
}

// installSpatial loads the spatial extension and verifies that GDAL-backed
// functions work.
func (db *DB) installSpatial(optional bool) error {
	spec := &extensionSpec{
		Name:              "spatial",
		VerifyQuery:       "SELECT ST_AsText(ST_Point(0, 0))",
		AvailabilityField: func(db *DB) *bool { return &db.spatialAvailable },
		WarningMessage:    "Spatial extension unavailable (DUCKDB_SPATIAL_OPTIONAL=true), shapefile import disabled",
	}
	return db.installCoreExtension(spec, optional)
}
