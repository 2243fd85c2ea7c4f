// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geostats/internal/validation"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// PlotRequest is the body of POST /api/v1/datasets/{id}/plots and of the
// legacy /generate_plot.
type PlotRequest struct {
	Feature1 string `json:"feature1" validate:"required,column"`
	Feature2 string `json:"feature2" validate:"omitempty,column"`
	PlotType string `json:"plot_type" validate:"required,plottype"`
	Format   string `json:"format" validate:"omitempty,oneof=json png"`

	// DatasetID selects the dataset on legacy routes; empty means the most
	// recent import.
	DatasetID string `json:"dataset_id" validate:"omitempty,uuid"`
}

// SeriesQuery holds the query parameters of the series endpoints.
type SeriesQuery struct {
	Feature string `form:"feature" validate:"required,max=255"`
}

// DatasetQuery holds the optional dataset selector of legacy GET routes.
type DatasetQuery struct {
	DatasetID string `form:"dataset_id" validate:"omitempty,uuid"`
}

// decodeJSON reads a size-limited JSON body into v. An empty body leaves v
// unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// validateRequest validates a struct and converts failures to the
// VALIDATION_ERROR envelope fields.
func validateRequest(v any) *APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	return &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}
