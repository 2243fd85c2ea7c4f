// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/geostats/internal/artifacts"
	"github.com/tomtom215/geostats/internal/charts"
	"github.com/tomtom215/geostats/internal/database"
	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/models"
	"github.com/tomtom215/geostats/internal/timeseries"
)

// Legacy response texts. Existing frontends match on them.
const (
	legacyMapSaved       = "GeoJSON data saved successfully"
	legacyNoUpload       = "No files uploaded yet"
	legacyNoShapefile    = "No shapefile found"
	legacyPlotRequired   = "feature1 and plot_type are required"
	legacySeriesFailed   = "Failed to process time series data"
	legacyUploadAccepted = "File uploaded successfully"
)

// legacyUpload is the body of a successful POST /upload.
type legacyUpload struct {
	Message   string `json:"message"`
	DatasetID string `json:"dataset_id"`
}

// legacyPlot is the body of a successful POST /generate_plot.
type legacyPlot struct {
	PlotJSONPath string `json:"plot_json_path"`
}

// Upload imports a zipped shapefile and makes it the current dataset
//
// @Summary Upload a shapefile archive (legacy)
// @Tags Legacy
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Zipped shapefile"
// @Success 200 {object} legacyUpload
// @Failure 400 {object} legacyError
// @Router /upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ds, err := h.importUpload(w, r)
	if err != nil {
		f := classify(err)
		if f.status >= http.StatusInternalServerError {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Legacy upload failed")
		}
		writeLegacyError(w, r, f.status, f.message)
		return
	}
	writeLegacyJSON(w, r, http.StatusOK, legacyUpload{Message: legacyUploadAccepted, DatasetID: ds.ID})
}

// GenerateMap writes the GeoJSON artifact of the current dataset
//
// @Summary Generate map GeoJSON (legacy)
// @Description Writes static/map_data.geojson for the most recent upload, or static/<id>/map_data.geojson when dataset_id is given
// @Tags Legacy
// @Produce plain
// @Param dataset_id query string false "Dataset ID, defaults to the most recent upload"
// @Success 200 {string} string "GeoJSON data saved successfully"
// @Router /generate_map [get]
func (h *Handler) GenerateMap(w http.ResponseWriter, r *http.Request) {
	q := DatasetQuery{DatasetID: r.URL.Query().Get("dataset_id")}
	if apiErr := validateRequest(&q); apiErr != nil {
		writeLegacyError(w, r, http.StatusBadRequest, apiErr.Message)
		return
	}

	ctx := r.Context()
	ds, err := h.resolveDataset(ctx, q.DatasetID)
	if errors.Is(err, ErrNoUpload) || errors.Is(err, database.ErrNotFound) {
		writeLegacyText(w, r, http.StatusOK, legacyNoUpload)
		return
	}
	if err == nil {
		ctx = logging.ContextWithDatasetID(ctx, ds.ID)
		_, err = h.mapData(ctx, ds.ID, true)
	}
	if err != nil {
		f := classify(err)
		logging.Ctx(ctx).Error().Err(err).Msg("Legacy map generation failed")
		writeLegacyText(w, r, f.status, f.message)
		return
	}
	writeLegacyText(w, r, http.StatusOK, legacyMapSaved)
}

// GeneratePlot builds a figure and writes it to plot_output.json
//
// @Summary Generate plot (legacy)
// @Description Malformed time series features fail with 500; features that match no columns plot an empty series
// @Tags Legacy
// @Accept json
// @Produce json
// @Param request body PlotRequest true "Plot request"
// @Success 200 {object} legacyPlot
// @Failure 400 {object} legacyError
// @Failure 500 {object} legacyError
// @Router /generate_plot [post]
func (h *Handler) GeneratePlot(w http.ResponseWriter, r *http.Request) {
	var req PlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeLegacyError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Feature1 == "" || req.PlotType == "" {
		writeLegacyError(w, r, http.StatusBadRequest, legacyPlotRequired)
		return
	}
	req.Format = formatJSON
	if apiErr := validateRequest(&req); apiErr != nil {
		writeLegacyError(w, r, http.StatusBadRequest, apiErr.Message)
		return
	}

	ctx := r.Context()
	ds, err := h.resolveDataset(ctx, req.DatasetID)
	if errors.Is(err, ErrNoUpload) || errors.Is(err, database.ErrNotFound) {
		writeLegacyError(w, r, http.StatusBadRequest, legacyNoShapefile)
		return
	}
	if err != nil {
		h.legacyPlotError(w, r, err)
		return
	}
	ctx = logging.ContextWithDatasetID(ctx, ds.ID)

	var fig *charts.Figure
	if charts.PlotType(req.PlotType) == charts.TimeSeriesPlot {
		result, serr := h.series(ctx, ds.ID, req.Feature1)
		switch {
		case serr != nil:
			logging.Ctx(ctx).Error().Err(serr).Msg("Time series extraction failed")
			writeLegacyError(w, r, http.StatusInternalServerError, legacySeriesFailed)
			return
		case result.Outcome == timeseries.OutcomeMalformedInput:
			writeLegacyError(w, r, http.StatusInternalServerError, legacySeriesFailed)
			return
		case result.Outcome == timeseries.OutcomeEmptyMatch:
			fig = charts.EmptyTimeSeries(req.Feature1)
		default:
			fig, err = charts.TimeSeries(result, req.Feature1)
		}
	} else {
		fig, err = h.buildPlot(ctx, ds.ID, &req)
	}
	if err != nil {
		h.legacyPlotError(w, r.WithContext(ctx), err)
		return
	}

	resp, err := h.storePlot(ds.ID, &req, fig)
	if err != nil {
		h.legacyPlotError(w, r.WithContext(ctx), err)
		return
	}
	path := resp.PlotJSONPath
	if h.artifacts.Latest() == ds.ID {
		path = artifacts.LegacyURLPath(artifacts.PlotOutput)
	}
	writeLegacyJSON(w, r, http.StatusOK, legacyPlot{PlotJSONPath: path})
}

func (h *Handler) legacyPlotError(w http.ResponseWriter, r *http.Request, err error) {
	f := classify(err)
	if f.status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Legacy plot generation failed")
	}
	writeLegacyError(w, r, f.status, f.message)
}

// LegacySummary returns the summary of the current dataset
//
// @Summary Get dataset summary (legacy)
// @Tags Legacy
// @Produce json
// @Param dataset_id query string false "Dataset ID, defaults to the most recent upload"
// @Success 200 {object} models.Summary
// @Failure 400 {object} legacyError "No shapefile found"
// @Router /summary [get]
func (h *Handler) LegacySummary(w http.ResponseWriter, r *http.Request) {
	q := DatasetQuery{DatasetID: r.URL.Query().Get("dataset_id")}
	if apiErr := validateRequest(&q); apiErr != nil {
		writeLegacyError(w, r, http.StatusBadRequest, apiErr.Message)
		return
	}

	ctx := r.Context()
	ds, err := h.resolveDataset(ctx, q.DatasetID)
	if errors.Is(err, ErrNoUpload) || errors.Is(err, database.ErrNotFound) {
		writeLegacyError(w, r, http.StatusBadRequest, legacyNoShapefile)
		return
	}
	var s *models.Summary
	if err == nil {
		ctx = logging.ContextWithDatasetID(ctx, ds.ID)
		s, err = h.summary(ctx, ds.ID)
	}
	if err != nil {
		f := classify(err)
		logging.Ctx(ctx).Error().Err(err).Msg("Legacy summary failed")
		writeLegacyError(w, r, f.status, f.message)
		return
	}
	if _, err := h.artifacts.WriteJSON(ds.ID, artifacts.Summary, s); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to write summary artifact")
	}
	writeLegacyJSON(w, r, http.StatusOK, s)
}
