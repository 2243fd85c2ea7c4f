// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"archive/zip"
	"context"
	"errors"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/geostats/internal/archive"
	"github.com/tomtom215/geostats/internal/charts"
	"github.com/tomtom215/geostats/internal/database"
	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/timeseries"
)

// Common API errors
var (
	// ErrNoUpload is returned by legacy routes when no dataset exists yet.
	ErrNoUpload = errors.New("no files uploaded yet")

	// ErrFileRequired indicates the multipart form had no "file" part.
	ErrFileRequired = errors.New("file is required")

	// ErrFileType indicates an upload that is not a .zip archive.
	ErrFileType = errors.New("file type not allowed")

	// ErrInvalidFeature is a series feature without a two-digit year suffix.
	ErrInvalidFeature = errors.New("feature must end in a two-digit year")

	// ErrNoMatchingColumns is a well-formed feature no column matches.
	ErrNoMatchingColumns = errors.New("no columns match the feature")

	// ErrAggregation wraps failures computing the mean of a matched column.
	ErrAggregation = errors.New("time series aggregation failed")
)

// failure is the client-facing form of an error.
type failure struct {
	status  int
	code    string
	message string
}

// classify maps an error to its HTTP status, code and a message safe to
// show clients. Messages of sentinel errors only echo request input.
func classify(err error) failure {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, ErrAggregation):
		return failure{http.StatusInternalServerError, ErrCodeAggregationError, "Failed to process time series data"}
	case errors.Is(err, ErrInvalidFeature):
		return failure{http.StatusBadRequest, ErrCodeInvalidFeature, "feature must end in a two-digit year, e.g. Pop_11"}
	case errors.Is(err, ErrNoMatchingColumns):
		return failure{http.StatusNotFound, ErrCodeNoMatchingColumns, "No columns match the feature"}
	case errors.Is(err, database.ErrNotFound):
		return failure{http.StatusNotFound, ErrCodeDatasetNotFound, "Dataset not found"}
	case errors.Is(err, ErrNoUpload):
		return failure{http.StatusNotFound, ErrCodeDatasetNotFound, "No files uploaded yet"}
	case errors.Is(err, ErrFileRequired):
		return failure{http.StatusBadRequest, ErrCodeBadRequest, "A .zip archive is required in the file field"}
	case errors.Is(err, ErrFileType):
		return failure{http.StatusBadRequest, ErrCodeInvalidArchive, "Only .zip archives are accepted"}
	case errors.Is(err, archive.ErrNoShapefile):
		return failure{http.StatusBadRequest, ErrCodeNoShapefile, "No shapefile found"}
	case errors.Is(err, archive.ErrUnsafePath):
		return failure{http.StatusBadRequest, ErrCodeInvalidArchive, "Archive contains unsafe paths"}
	case errors.Is(err, zip.ErrFormat), errors.Is(err, zip.ErrAlgorithm), errors.Is(err, zip.ErrChecksum):
		return failure{http.StatusBadRequest, ErrCodeInvalidArchive, "File is not a valid zip archive"}
	case errors.Is(err, archive.ErrArchiveTooLarge), errors.As(err, &tooLarge):
		return failure{http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Upload exceeds size limits"}
	case errors.Is(err, ErrImportThrottled):
		return failure{http.StatusTooManyRequests, ErrCodeTooManyRequests, "Too many imports, retry later"}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return failure{http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Imports are temporarily unavailable"}
	case errors.Is(err, database.ErrSpatialUnavailable):
		return failure{http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Shapefile support is unavailable"}
	case errors.Is(err, database.ErrUnknownColumn):
		return failure{http.StatusBadRequest, ErrCodeUnknownColumn, err.Error()}
	case errors.Is(err, timeseries.ErrNonNumericColumn):
		return failure{http.StatusBadRequest, ErrCodeNonNumericColumn, err.Error()}
	case errors.Is(err, charts.ErrFeatureRequired), errors.Is(err, charts.ErrUnknownPlotType):
		return failure{http.StatusBadRequest, ErrCodeValidationFailed, err.Error()}
	case errors.Is(err, charts.ErrRenderUnsupported):
		return failure{http.StatusBadRequest, ErrCodeRenderUnsupported, err.Error()}
	case errors.Is(err, database.ErrNoGeometry):
		return failure{http.StatusUnprocessableEntity, ErrCodeNoGeometry, "Dataset has no geometry"}
	case errors.Is(err, context.DeadlineExceeded):
		return failure{http.StatusGatewayTimeout, ErrCodeServiceUnavailable, "Request timed out"}
	default:
		return failure{http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred"}
	}
}

// respondErr writes the v1 error envelope for err. Server-side failures
// are logged with the request's context.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	f := classify(err)
	if f.status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("code", f.code).Msg("API error")
	} else {
		logging.Ctx(r.Context()).Debug().Err(err).Str("code", f.code).Msg("Request rejected")
	}
	NewResponseWriter(w, r).Error(f.status, f.code, f.message)
}
