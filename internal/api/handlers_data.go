// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/geostats/internal/artifacts"
	"github.com/tomtom215/geostats/internal/cache"
	"github.com/tomtom215/geostats/internal/export"
	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/metrics"
	"github.com/tomtom215/geostats/internal/models"
	"github.com/tomtom215/geostats/internal/timeseries"
)

// DatasetColumns lists attribute columns and their year-suffixed families
//
// @Summary Get dataset columns
// @Description Attribute names, the numeric subset, and columns grouped into time series families by normalized key
// @Tags Datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} APIResponse{data=models.ColumnsResponse}
// @Failure 404 {object} APIResponse "Dataset not found"
// @Router /api/v1/datasets/{id}/columns [get]
func (h *Handler) DatasetColumns(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.GetDataset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(columnsResponse(ds))
}

func columnsResponse(ds *models.Dataset) models.ColumnsResponse {
	resp := models.ColumnsResponse{
		DatasetID: ds.ID,
		Columns:   ds.AttributeNames(),
		Numeric:   []string{},
		Families:  []models.SeriesFamily{},
	}
	for _, c := range ds.Columns {
		if c.Numeric && !c.Geometry {
			resp.Numeric = append(resp.Numeric, c.Name)
		}
	}
	for _, f := range timeseries.Families(resp.Columns) {
		resp.Families = append(resp.Families, models.SeriesFamily{Key: f.Key, Columns: f.Columns})
	}
	return resp
}

// DatasetMap returns the dataset as a GeoJSON FeatureCollection
//
// @Summary Get dataset GeoJSON
// @Description Features reprojected to EPSG:4326 with attributes as properties. Also written to static/<id>/map_data.geojson.
// @Tags Datasets
// @Produce application/geo+json
// @Param id path string true "Dataset ID"
// @Success 200 {file} file "GeoJSON FeatureCollection"
// @Failure 404 {object} APIResponse "Dataset not found"
// @Failure 422 {object} APIResponse "Dataset has no geometry"
// @Router /api/v1/datasets/{id}/map [get]
func (h *Handler) DatasetMap(w http.ResponseWriter, r *http.Request) {
	data, err := h.mapData(r.Context(), chi.URLParam(r, "id"), false)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeCacheable(w, r, "application/geo+json", data)
}

// mapData returns the dataset GeoJSON. Datasets are immutable, so an
// existing artifact is reused. rewrite forces the artifact to be written
// again, refreshing the legacy root mirror.
func (h *Handler) mapData(ctx context.Context, id string, rewrite bool) ([]byte, error) {
	data, err := h.artifacts.Read(id, artifacts.MapData)
	switch {
	case err == nil:
		if rewrite {
			if _, err := h.artifacts.Write(id, artifacts.MapData, data); err != nil {
				return nil, err
			}
		}
		return data, nil
	case errors.Is(err, artifacts.ErrInvalidID):
		// Let the store report the unknown dataset.
	case !errors.Is(err, fs.ErrNotExist):
		logging.Ctx(ctx).Warn().Err(err).Msg("Unreadable map artifact, regenerating")
	}

	data, err = h.store.ExportGeoJSON(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := h.artifacts.Write(id, artifacts.MapData, data); err != nil {
		return nil, err
	}
	return data, nil
}

// DatasetSummary returns feature, attribute and geometry statistics
//
// @Summary Get dataset summary
// @Tags Datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} APIResponse{data=models.Summary}
// @Failure 404 {object} APIResponse "Dataset not found"
// @Router /api/v1/datasets/{id}/summary [get]
func (h *Handler) DatasetSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.summary(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if _, err := h.artifacts.WriteJSON(id, artifacts.Summary, s); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write summary artifact")
	}
	NewResponseWriter(w, r).Success(s)
}

// DatasetSeries extracts the year series of a feature
//
// @Summary Get time series
// @Description Finds columns named like the feature with a two-digit year suffix and returns the mean of each, ordered by year
// @Tags Series
// @Produce json
// @Param id path string true "Dataset ID"
// @Param feature query string true "Feature with a two-digit year suffix, e.g. Pop_11"
// @Success 200 {object} APIResponse{data=models.SeriesResponse}
// @Failure 400 {object} APIResponse "Feature has no two-digit year suffix"
// @Failure 404 {object} APIResponse "Dataset not found or no matching columns"
// @Router /api/v1/datasets/{id}/series [get]
func (h *Handler) DatasetSeries(w http.ResponseWriter, r *http.Request) {
	result, ok := h.seriesFromRequest(w, r)
	if !ok {
		return
	}
	NewResponseWriter(w, r).Success(seriesResponse(result))
}

// DatasetSeriesWorkbook exports the year series of a feature as XLSX
//
// @Summary Export time series workbook
// @Tags Series
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Dataset ID"
// @Param feature query string true "Feature with a two-digit year suffix"
// @Success 200 {file} file "Workbook with Series and Summary sheets"
// @Failure 400 {object} APIResponse "Feature has no two-digit year suffix"
// @Failure 404 {object} APIResponse "Dataset not found or no matching columns"
// @Router /api/v1/datasets/{id}/series.xlsx [get]
func (h *Handler) DatasetSeriesWorkbook(w http.ResponseWriter, r *http.Request) {
	result, ok := h.seriesFromRequest(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	summary, err := h.summary(r.Context(), id)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Exporting workbook without summary")
		summary = nil
	}

	wb, err := export.SeriesWorkbook(result.Feature, result, summary)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	defer func() {
		if err := wb.Close(); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to close workbook")
		}
	}()

	var buf bytes.Buffer
	if _, err := wb.WriteTo(&buf); err != nil {
		respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(result.Feature)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write workbook")
	}
}

// seriesFromRequest validates ?feature= and extracts the series. It writes
// the error response and returns false unless the series is non-empty.
func (h *Handler) seriesFromRequest(w http.ResponseWriter, r *http.Request) (timeseries.Result, bool) {
	q := SeriesQuery{Feature: r.URL.Query().Get("feature")}
	if apiErr := validateRequest(&q); apiErr != nil {
		NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
		return timeseries.Result{}, false
	}

	result, err := h.series(r.Context(), chi.URLParam(r, "id"), q.Feature)
	if err == nil {
		err = outcomeErr(result)
	}
	if err != nil {
		respondErr(w, r, err)
		return timeseries.Result{}, false
	}
	return result, true
}

// outcomeErr maps the non-success outcomes to errors.
func outcomeErr(res timeseries.Result) error {
	switch res.Outcome {
	case timeseries.OutcomeMalformedInput:
		return fmt.Errorf("%w: %q", ErrInvalidFeature, res.Feature)
	case timeseries.OutcomeEmptyMatch:
		return fmt.Errorf("%w: key %q", ErrNoMatchingColumns, res.Key)
	default:
		return nil
	}
}

// series extracts the year series of feature, caching the result per
// dataset. Every outcome is cached; the dataset tables never change.
func (h *Handler) series(ctx context.Context, id, feature string) (timeseries.Result, error) {
	key := cache.GenerateKey(id, "series", feature)
	if v, ok := h.cache.Get(key); ok {
		if res, ok := v.(timeseries.Result); ok {
			return res, nil
		}
	}

	src, err := h.store.SeriesSource(ctx, id)
	if err != nil {
		return timeseries.Result{}, err
	}
	res, err := h.extractor.Extract(ctx, feature, src)
	if err != nil {
		return timeseries.Result{}, fmt.Errorf("%w: %w", ErrAggregation, err)
	}
	metrics.RecordSeriesExtraction(res.Outcome.String())
	h.cache.Set(key, res)
	return res, nil
}

func seriesResponse(res timeseries.Result) models.SeriesResponse {
	rates := make([]*float64, len(res.Rates))
	for i, v := range res.Rates {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			rates[i] = &v
		}
	}
	columns, years := res.Columns, res.Years
	if columns == nil {
		columns = []string{}
	}
	if years == nil {
		years = []string{}
	}
	return models.SeriesResponse{
		Feature: res.Feature,
		Key:     res.Key,
		Outcome: res.Outcome.String(),
		Columns: columns,
		Years:   years,
		Rates:   rates,
	}
}
