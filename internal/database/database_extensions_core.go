// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package database

import (
	"fmt"

	"github.com/tomtom215/geostats/internal/logging"
)

// extensionSpec defines how a DuckDB extension is installed and verified.
type extensionSpec struct {
	// Name is the extension name (e.g., "spatial")
	Name string
	// VerifyQuery is an optional SQL query to verify the extension is working
	VerifyQuery string
	// AvailabilityField is a pointer to the DB field tracking availability
	AvailabilityField func(*DB) *bool
	// WarningMessage is shown when extension is unavailable (optional mode only)
	WarningMessage string
}

// installCoreExtension walks LOAD, INSTALL and FORCE INSTALL until one of
// them leaves the extension loaded.
func (db *DB) installCoreExtension(spec *extensionSpec, optional bool) error {
	load := fmt.Sprintf("LOAD %s;", spec.Name)

	// Step 1: already installed (Docker image, setup script or earlier run)
	if err := db.execWithHardTimeout(load); err == nil {
		return db.verifyExtension(spec, optional)
	}

	// In optional mode without a local copy, skip the network round trips.
	if optional && !isExtensionInstalledLocally(spec.Name) {
		logging.Debug().Str("extension", spec.Name).Msg("Extension not installed locally, skipping download")
		db.setExtensionUnavailable(spec)
		return nil
	}

	// Step 2: INSTALL with retry, falling back to FORCE INSTALL
	installErr := db.execWithRetry(fmt.Sprintf("INSTALL %s;", spec.Name), defaultRetryConfig)
	if installErr != nil {
		if forceErr := db.execWithRetry(fmt.Sprintf("FORCE INSTALL %s;", spec.Name), defaultRetryConfig); forceErr != nil {
			if optional {
				db.setExtensionUnavailable(spec)
				return nil
			}
			return fmt.Errorf("failed to install %s extension after retries: install error: %w, force install error: %w",
				spec.Name, installErr, forceErr)
		}
	}

	// Step 3: LOAD
	if err := db.execWithHardTimeout(load); err != nil {
		if optional {
			db.setExtensionUnavailable(spec)
			logging.Warn().Str("extension", spec.Name).Err(err).Msg("Failed to load extension")
			return nil
		}
		return fmt.Errorf("failed to load %s extension: %w", spec.Name, err)
	}

	return db.verifyExtension(spec, optional)
}

func (db *DB) setExtensionUnavailable(spec *extensionSpec) {
	if field := spec.AvailabilityField; field != nil {
		*field(db) = false
	}
	if spec.WarningMessage != "" {
		logging.Warn().Str("extension", spec.Name).Msg(spec.WarningMessage)
	}
}

func (db *DB) setExtensionAvailable(spec *extensionSpec) {
	if field := spec.AvailabilityField; field != nil {
		*field(db) = true
	}
}

// verifyExtension runs the spec's verify query, if any.
func (db *DB) verifyExtension(spec *extensionSpec, optional bool) error {
	if spec.VerifyQuery == "" {
		db.setExtensionAvailable(spec)
		return nil
	}
	if _, err := db.queryRowWithHardTimeout(spec.VerifyQuery); err != nil {
		if optional {
			db.setExtensionUnavailable(spec)
			logging.Warn().Str("extension", spec.Name).Err(err).Msg("Extension functions unavailable")
			return nil
		}
		return fmt.Errorf("%s extension loaded but functions unavailable: %w", spec.Name, err)
	}
	db.setExtensionAvailable(spec)
	return nil
}
