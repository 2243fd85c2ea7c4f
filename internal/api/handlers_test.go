// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/geostats/internal/artifacts"
	"github.com/tomtom215/geostats/internal/events"
	"github.com/tomtom215/geostats/internal/models"
)

func TestUploadDataset(t *testing.T) {
	env := newTestEnv(t)
	srv := env.server()

	w := do(t, srv, uploadRequest(t, "/api/v1/datasets", "regions.zip", shapefileZip(t)))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	_, data := decodeEnvelope(t, w)
	var ds models.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		t.Fatalf("decode dataset: %v", err)
	}
	if ds.Name != "regions.zip" {
		t.Errorf("Name = %q, want regions.zip", ds.Name)
	}

	if len(env.store.imports) != 1 {
		t.Fatalf("imports = %d, want 1", len(env.store.imports))
	}
	req := env.store.imports[0]
	if filepath.Base(req.ShapefilePath) != "regions.shp" {
		t.Errorf("ShapefilePath = %q", req.ShapefilePath)
	}
	if req.SourceCRS != `GEOGCS["WGS 84"]` {
		t.Errorf("SourceCRS = %q", req.SourceCRS)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Storage.UploadDir, ds.ID)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("scratch directory not removed: %v", err)
	}

	if len(env.pub.imported) != 1 || !env.pub.imported[0].Latest {
		t.Fatalf("imported events = %+v, want one latest", env.pub.imported)
	}
	if env.art.Latest() != ds.ID {
		t.Errorf("latest = %q, want %q", env.art.Latest(), ds.ID)
	}
}

func TestUploadDataset_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		status   int
		code     string
	}{
		{"wrong extension", "regions.shp", []byte("x"), http.StatusBadRequest, ErrCodeInvalidArchive},
		{"not a zip", "regions.zip", []byte("not a zip"), http.StatusBadRequest, ErrCodeInvalidArchive},
		{"no shapefile", "empty.zip", emptyZip(t), http.StatusBadRequest, ErrCodeNoShapefile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := do(t, env.server(), uploadRequest(t, "/api/v1/datasets", tt.filename, tt.data))
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			resp, _ := decodeEnvelope(t, w)
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.code)
			}
			if len(env.store.imports) != 0 {
				t.Error("store should not be called")
			}
		})
	}
}

func TestUploadDataset_MissingFile(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	w := do(t, env.server(), req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func emptyZip(t *testing.T) []byte {
	t.Helper()
	return zipOf(t, map[string]string{"readme.txt": "nothing here"})
}

func TestListAndGetDataset(t *testing.T) {
	env := newTestEnv(t)
	first := env.store.add("a.zip")
	second := env.store.add("b.zip")
	srv := env.server()

	w := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	resp, data := decodeEnvelope(t, w)
	var list []models.Dataset
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("list order = %v, want newest first", list)
	}
	if resp.Meta == nil || resp.Meta.Count == nil || *resp.Meta.Count != 2 {
		t.Errorf("meta count = %+v, want 2", resp.Meta)
	}

	w = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+first.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/datasets/6f0f9ab4-0000-4000-8000-000000000000", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing dataset status = %d, want 404", w.Code)
	}
	resp, _ = decodeEnvelope(t, w)
	if resp.Error.Code != ErrCodeDatasetNotFound {
		t.Errorf("code = %s, want %s", resp.Error.Code, ErrCodeDatasetNotFound)
	}
}

func TestDeleteDataset(t *testing.T) {
	env := newTestEnv(t)
	ds := env.addLatest("a.zip")
	if _, err := env.art.WriteJSON(ds.ID, artifacts.Summary, map[string]int{"n": 1}); err != nil {
		t.Fatal(err)
	}
	srv := env.server()

	w := do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/v1/datasets/"+ds.ID, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(env.pub.deleted) != 1 || env.pub.deleted[0].Reason != events.ReasonRequest {
		t.Errorf("deleted events = %+v", env.pub.deleted)
	}
	if env.art.Exists(ds.ID, artifacts.Summary) {
		t.Error("artifacts not removed")
	}

	w = do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/v1/datasets/"+ds.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestDatasetColumns(t *testing.T) {
	env := newTestEnv(t)
	ds := env.store.add("a.zip")

	w := do(t, env.server(), httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+ds.ID+"/columns", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	_, data := decodeEnvelope(t, w)
	var cols models.ColumnsResponse
	if err := json.Unmarshal(data, &cols); err != nil {
		t.Fatal(err)
	}
	if len(cols.Columns) != 5 {
		t.Errorf("columns = %v, want 5 attributes without geometry", cols.Columns)
	}
	for _, c := range cols.Numeric {
		if c == "Name" {
			t.Error("Name listed as numeric")
		}
	}
	if len(cols.Families) != 1 || cols.Families[0].Key != "pop" || len(cols.Families[0].Columns) != 3 {
		t.Errorf("families = %+v, want one pop family of 3", cols.Families)
	}
}

func TestDatasetSeries(t *testing.T) {
	env := newTestEnv(t)
	ds := env.store.add("a.zip")
	srv := env.server()

	w := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+ds.ID+"/series?feature=Pop_11", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	_, data := decodeEnvelope(t, w)
	var s models.SeriesResponse
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	wantYears := []string{"1999", "2005", "2011"}
	wantRates := []float64{20, 5, 2}
	if strings.Join(s.Years, ",") != strings.Join(wantYears, ",") {
		t.Fatalf("years = %v, want %v", s.Years, wantYears)
	}
	for i, r := range s.Rates {
		if r == nil || *r != wantRates[i] {
			t.Errorf("rates[%d] = %v, want %v", i, r, wantRates[i])
		}
	}
	if s.Outcome != "success" || s.Key != "pop" {
		t.Errorf("outcome/key = %s/%s", s.Outcome, s.Key)
	}
}

func TestDatasetSeries_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		feature string
		status  int
		code    string
	}{
		{"malformed", "Pop", http.StatusBadRequest, ErrCodeInvalidFeature},
		{"one digit", "Pop_1", http.StatusBadRequest, ErrCodeInvalidFeature},
		{"empty match", "Income_10", http.StatusNotFound, ErrCodeNoMatchingColumns},
		{"missing feature", "", http.StatusBadRequest, ErrCodeValidationFailed},
		{"non-numeric family", "Name12", http.StatusNotFound, ErrCodeNoMatchingColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ds := env.store.add("a.zip")
			w := do(t, env.server(), httptest.NewRequest(http.MethodGet,
				"/api/v1/datasets/"+ds.ID+"/series?feature="+tt.feature, nil))
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			resp, _ := decodeEnvelope(t, w)
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %+v, want %s", resp.Error, tt.code)
			}
		})
	}
}

func TestDatasetSeries_AggregationFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.frame = models.NewFrame(2).
		AddFloats("Rate_10", 1, 2).
		Add("Rate_11", []any{"high", "low"})
	ds := env.store.add("a.zip")

	w := do(t, env.server(), httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+ds.ID+"/series?feature=Rate_10", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	resp, _ := decodeEnvelope(t, w)
	if resp.Error.Code != ErrCodeAggregationError {
		t.Errorf("code = %s, want %s", resp.Error.Code, ErrCodeAggregationError)
	}
}

func TestDatasetSeriesWorkbook(t *testing.T) {
	env := newTestEnv(t)
	ds := env.store.add("a.zip")

	w := do(t, env.server(), httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+ds.ID+"/series.xlsx?feature=Pop_11", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), ".xlsx") {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Series")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %v, want header + 3", rows)
	}
	if rows[1][0] != "1999" {
		t.Errorf("first year = %q, want 1999", rows[1][0])
	}
}

func TestDatasetMapAndSummary(t *testing.T) {
	env := newTestEnv(t)
	ds := env.store.add("a.zip")
	srv := env.server()

	w := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+ds.ID+"/map", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("map status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !env.art.Exists(ds.ID, artifacts.MapData) {
		t.Error("map artifact not written")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+ds.ID+"/map", nil)
	req.Header.Set("If-None-Match", w.Header().Get("ETag"))
	if w := do(t, srv, req); w.Code != http.StatusNotModified {
		t.Errorf("conditional map status = %d, want 304", w.Code)
	}

	w = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+ds.ID+"/summary", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("summary status = %d", w.Code)
	}
	_, data := decodeEnvelope(t, w)
	var s models.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	if s.NumFeatures != 3 || s.GeometryStats.GeometryType != "Polygon" {
		t.Errorf("summary = %+v", s)
	}
	if !env.art.Exists(ds.ID, artifacts.Summary) {
		t.Error("summary artifact not written")
	}
}

func TestCreatePlot(t *testing.T) {
	env := newTestEnv(t)
	ds := env.store.add("a.zip")
	srv := env.server()

	w := do(t, srv, jsonRequest(t, http.MethodPost, "/api/v1/datasets/"+ds.ID+"/plots",
		PlotRequest{Feature1: "Pop_11", PlotType: "time_series_plot"}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	_, data := decodeEnvelope(t, w)
	var resp PlotResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.PlotJSONPath != artifacts.URLPath(ds.ID, artifacts.PlotOutput) {
		t.Errorf("plot_json_path = %q", resp.PlotJSONPath)
	}

	// plot_output.json holds the figure as a JSON string.
	raw, err := env.art.Read(ds.ID, artifacts.PlotOutput)
	if err != nil {
		t.Fatal(err)
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		t.Fatalf("plot artifact is not a JSON string: %v", err)
	}
	if !json.Valid([]byte(encoded)) {
		t.Error("plot artifact string is not figure JSON")
	}
}

func TestCreatePlot_Errors(t *testing.T) {
	tests := []struct {
		name   string
		req    PlotRequest
		status int
		code   string
	}{
		{"unknown type", PlotRequest{Feature1: "Area", PlotType: "radar"}, http.StatusBadRequest, ErrCodeValidationFailed},
		{"missing feature2", PlotRequest{Feature1: "Area", PlotType: "scatter"}, http.StatusBadRequest, ErrCodeValidationFailed},
		{"unknown column", PlotRequest{Feature1: "Nope", Feature2: "Area", PlotType: "scatter"}, http.StatusBadRequest, ErrCodeUnknownColumn},
		{"series malformed", PlotRequest{Feature1: "Area", PlotType: "time_series_plot"}, http.StatusBadRequest, ErrCodeInvalidFeature},
		{"series empty", PlotRequest{Feature1: "Income_10", PlotType: "time_series_plot"}, http.StatusNotFound, ErrCodeNoMatchingColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ds := env.store.add("a.zip")
			w := do(t, env.server(), jsonRequest(t, http.MethodPost, "/api/v1/datasets/"+ds.ID+"/plots", tt.req))
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			resp, _ := decodeEnvelope(t, w)
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %+v, want %s", resp.Error, tt.code)
			}
		})
	}
}

func TestCreatePlot_PNG(t *testing.T) {
	env := newTestEnv(t)
	ds := env.store.add("a.zip")

	w := do(t, env.server(), jsonRequest(t, http.MethodPost, "/api/v1/datasets/"+ds.ID+"/plots",
		PlotRequest{Feature1: "Area", Feature2: "Pop_11", PlotType: "scatter", Format: "png"}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "\x89PNG") {
		t.Error("body is not a PNG")
	}
}

func TestSeriesIsCached(t *testing.T) {
	env := newTestEnv(t)
	ds := env.store.add("a.zip")
	srv := env.server()
	target := "/api/v1/datasets/" + ds.ID + "/series?feature=Pop_11"

	do(t, srv, httptest.NewRequest(http.MethodGet, target, nil))
	// Replacing the frame is invisible while the cached result is warm.
	env.store.frame = models.NewFrame(1).AddFloats("Other", 1)
	w := do(t, srv, httptest.NewRequest(http.MethodGet, target, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("cached series status = %d", w.Code)
	}
	if stats := env.handler.GetCacheStats(); stats.Hits == 0 {
		t.Errorf("cache stats = %+v, want a hit", stats)
	}
}
