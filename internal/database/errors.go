// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/geostats/internal/logging"
)

var (
	// ErrNotFound is returned when no dataset matches the requested ID.
	ErrNotFound = errors.New("dataset not found")

	// ErrSpatialUnavailable is returned by spatial operations when the
	// spatial extension could not be loaded.
	ErrSpatialUnavailable = errors.New("spatial extension unavailable")

	// ErrUnknownColumn is returned when a requested column is not part of
	// the dataset.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoGeometry is returned for spatial operations on a dataset without
	// a geometry column.
	ErrNoGeometry = errors.New("dataset has no geometry column")
)

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
