// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/geostats/internal/charts"
	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/metrics"
)

const (
	formatJSON = "json"
	formatPNG  = "png"
)

// PlotResponse is the data of a JSON plot response.
type PlotResponse struct {
	PlotType     string          `json:"plot_type"`
	Figure       json.RawMessage `json:"figure" swaggertype:"object"`
	PlotJSONPath string          `json:"plot_json_path"`
}

// CreatePlot builds a Plotly figure from dataset columns
//
// @Summary Create plot
// @Description Builds a figure of the requested type. JSON figures are also written to static/<id>/plot_output.json as a JSON string. format=png renders scatter, line, bar, box and time series charts.
// @Tags Plots
// @Accept json
// @Produce json,image/png
// @Param id path string true "Dataset ID"
// @Param request body PlotRequest true "Plot request"
// @Success 200 {object} APIResponse{data=PlotResponse}
// @Failure 400 {object} APIResponse "Invalid request or unknown column"
// @Failure 404 {object} APIResponse "Dataset not found or no matching columns"
// @Failure 500 {object} APIResponse "Aggregation failed"
// @Router /api/v1/datasets/{id}/plots [post]
func (h *Handler) CreatePlot(w http.ResponseWriter, r *http.Request) {
	var req PlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		NewResponseWriter(w, r).BadRequest("Invalid JSON body")
		return
	}
	req.DatasetID = ""
	if apiErr := validateRequest(&req); apiErr != nil {
		NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	id := chi.URLParam(r, "id")
	ctx := logging.ContextWithDatasetID(r.Context(), id)
	fig, err := h.buildPlot(ctx, id, &req)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if req.Format == formatPNG {
		h.writePNG(w, r, &req, fig)
		return
	}
	resp, err := h.storePlot(id, &req, fig)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(resp)
}

// buildPlot creates the figure for req from dataset id. A time series
// whose feature matches no columns fails with ErrNoMatchingColumns.
func (h *Handler) buildPlot(ctx context.Context, id string, req *PlotRequest) (*charts.Figure, error) {
	pt := charts.PlotType(req.PlotType)
	if pt == charts.TimeSeriesPlot {
		result, err := h.series(ctx, id, req.Feature1)
		if err == nil {
			err = outcomeErr(result)
		}
		if err != nil {
			return nil, err
		}
		return charts.TimeSeries(result, req.Feature1)
	}

	if err := charts.CheckFeatures(pt, req.Feature1, req.Feature2); err != nil {
		return nil, err
	}
	frame, err := h.store.ColumnFrame(ctx, id, h.config.API.MaxPlotRows, pt.Columns(req.Feature1, req.Feature2)...)
	if err != nil {
		return nil, err
	}
	return charts.Build(pt, frame, req.Feature1, req.Feature2)
}

// storePlot writes the figure artifact and returns the JSON response data.
func (h *Handler) storePlot(id string, req *PlotRequest, fig *charts.Figure) (*PlotResponse, error) {
	data, err := fig.JSON()
	if err != nil {
		return nil, err
	}
	path, err := h.artifacts.WritePlot(id, data)
	if err != nil {
		return nil, err
	}
	metrics.RecordPlot(req.PlotType, formatJSON)
	return &PlotResponse{PlotType: req.PlotType, Figure: data, PlotJSONPath: path}, nil
}

func (h *Handler) writePNG(w http.ResponseWriter, r *http.Request, req *PlotRequest, fig *charts.Figure) {
	var buf bytes.Buffer
	if err := charts.RenderPNG(&buf, fig); err != nil {
		respondErr(w, r, err)
		return
	}
	metrics.RecordPlot(req.PlotType, formatPNG)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write PNG")
	}
}
