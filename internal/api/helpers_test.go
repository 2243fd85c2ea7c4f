// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/geostats/internal/artifacts"
	"github.com/tomtom215/geostats/internal/cache"
	"github.com/tomtom215/geostats/internal/config"
	"github.com/tomtom215/geostats/internal/database"
	"github.com/tomtom215/geostats/internal/events"
	"github.com/tomtom215/geostats/internal/models"
	"github.com/tomtom215/geostats/internal/timeseries"
)

// mockStore is an in-memory Store. Every dataset shares one attribute frame.
type mockStore struct {
	mu        sync.Mutex
	datasets  []*models.Dataset // oldest first
	frame     *models.Frame
	pingErr   error
	noSpatial bool
	importErr error
	imports   []database.ImportRequest
}

func newMockStore(frame *models.Frame) *mockStore {
	return &mockStore{frame: frame}
}

// add registers a dataset whose columns are the frame's, plus geometry.
func (m *mockStore) add(name string) *models.Dataset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(uuid.NewString(), name)
}

func (m *mockStore) addLocked(id, name string) *models.Dataset {
	ds := &models.Dataset{
		ID:            id,
		Name:          name,
		ShapefileName: "regions.shp",
		TableName:     "ds_" + id[:8],
		FeatureCount:  int64(m.frame.Len()),
		CreatedAt:     time.Now().Add(time.Duration(len(m.datasets)) * time.Second),
	}
	for _, c := range m.frame.Columns() {
		_, err := m.frame.Floats(c)
		ds.Columns = append(ds.Columns, models.Column{Name: c, Type: "DOUBLE", Numeric: err == nil})
	}
	ds.Columns = append(ds.Columns, models.Column{Name: "geom", Type: "GEOMETRY", Geometry: true})
	m.datasets = append(m.datasets, ds)
	return ds
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }
func (m *mockStore) IsSpatialAvailable() bool   { return !m.noSpatial }

func (m *mockStore) ImportShapefile(_ context.Context, req database.ImportRequest) (*models.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.importErr != nil {
		return nil, m.importErr
	}
	m.imports = append(m.imports, req)
	return m.addLocked(req.ID, req.Name), nil
}

func (m *mockStore) GetDataset(_ context.Context, id string) (*models.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ds := range m.datasets {
		if ds.ID == id {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("dataset %s: %w", id, database.ErrNotFound)
}

func (m *mockStore) LatestDataset(context.Context) (*models.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.datasets) == 0 {
		return nil, database.ErrNotFound
	}
	return m.datasets[len(m.datasets)-1], nil
}

func (m *mockStore) ListDatasets(context.Context) ([]*models.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Dataset, 0, len(m.datasets))
	for i := len(m.datasets) - 1; i >= 0; i-- {
		out = append(out, m.datasets[i])
	}
	return out, nil
}

func (m *mockStore) CountDatasets(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.datasets)), nil
}

func (m *mockStore) DeleteDataset(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, ds := range m.datasets {
		if ds.ID == id {
			m.datasets = append(m.datasets[:i], m.datasets[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *mockStore) SeriesSource(ctx context.Context, id string) (timeseries.Dataset, error) {
	if _, err := m.GetDataset(ctx, id); err != nil {
		return nil, err
	}
	return m.frame, nil
}

func (m *mockStore) ColumnFrame(ctx context.Context, id string, _ int, columns ...string) (*models.Frame, error) {
	if _, err := m.GetDataset(ctx, id); err != nil {
		return nil, err
	}
	out := models.NewFrame(m.frame.Len())
	for _, c := range columns {
		vals, ok := m.frame.Values(c)
		if !ok {
			return nil, fmt.Errorf("%q: %w", c, database.ErrUnknownColumn)
		}
		out.Add(c, vals)
	}
	return out, nil
}

func (m *mockStore) ExportGeoJSON(ctx context.Context, id string) ([]byte, error) {
	if _, err := m.GetDataset(ctx, id); err != nil {
		return nil, err
	}
	return []byte(`{"type":"FeatureCollection","features":[]}`), nil
}

func (m *mockStore) Summarize(ctx context.Context, id string) (*models.Summary, error) {
	ds, err := m.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.Summary{
		NumFeatures:   ds.FeatureCount,
		NumAttributes: len(ds.Columns),
		GeometryStats: models.GeometryStats{
			GeometryType: "Polygon",
			CRS:          "EPSG:4326",
			Extent:       [4]float64{0, 0, 1, 1},
			Area:         1,
			Length:       4,
		},
	}, nil
}

// mockPublisher records events and mirrors what the event handlers do to
// the artifact store.
type mockPublisher struct {
	mu       sync.Mutex
	art      *artifacts.Store
	imported []*events.DatasetImported
	deleted  []*events.DatasetDeleted
}

func (p *mockPublisher) PublishImported(_ context.Context, ev *events.DatasetImported) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.imported = append(p.imported, ev)
	if ev.Latest {
		p.art.SetLatest(ev.ID)
	}
	return nil
}

func (p *mockPublisher) PublishDeleted(_ context.Context, ev *events.DatasetDeleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, ev)
	return p.art.Remove(ev.ID)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Storage: config.StorageConfig{
			UploadDir:         filepath.Join(dir, "uploads"),
			StaticDir:         filepath.Join(dir, "static"),
			MaxUploadBytes:    1 << 20,
			MaxExtractedBytes: 1 << 20,
			MaxArchiveEntries: 16,
		},
		Series:   config.SeriesConfig{Pivot: 24},
		API:      config.APIConfig{CacheTTL: time.Minute, MaxPlotRows: 1000},
		Security: config.SecurityConfig{RateLimitDisabled: true, CORSOrigins: []string{"https://app.example.com"}},
	}
}

// seriesFrame has the Pop family (3 years across the pivot), a non-numeric
// Name column and a numeric Area column.
func seriesFrame() *models.Frame {
	return models.NewFrame(3).
		AddFloats("Pop_99", 10, 20, 30).
		AddFloats("Pop_11", 1, 2, 3).
		AddFloats("POP-05", 4, 5, 6).
		AddFloats("Area", 1.5, 2.5, 3.5).
		Add("Name", []any{"a", "b", "c"})
}

type testEnv struct {
	handler *Handler
	store   *mockStore
	pub     *mockPublisher
	art     *artifacts.Store
	cfg     *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig(t)
	art, err := artifacts.New(cfg.Storage.StaticDir)
	if err != nil {
		t.Fatalf("artifacts.New: %v", err)
	}
	c := cache.New("test", time.Minute)
	t.Cleanup(c.Close)

	store := newMockStore(seriesFrame())
	pub := &mockPublisher{art: art}
	return &testEnv{
		handler: NewHandler(store, art, pub, c, cfg),
		store:   store,
		pub:     pub,
		art:     art,
		cfg:     cfg,
	}
}

// server returns the full chi handler.
func (e *testEnv) server() http.Handler {
	return NewRouter(e.handler, &e.cfg.Security).SetupChi()
}

// addLatest registers a dataset and mirrors it at the static root.
func (e *testEnv) addLatest(name string) *models.Dataset {
	ds := e.store.add(name)
	e.art.SetLatest(ds.ID)
	return ds
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeEnvelope decodes an APIResponse, with Data left raw.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (APIResponse, json.RawMessage) {
	t.Helper()
	var env struct {
		APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return env.APIResponse, env.Data
}

func shapefileZip(t *testing.T) []byte {
	t.Helper()
	return zipOf(t, map[string]string{
		"regions.shp": "binary",
		"regions.shx": "binary",
		"regions.dbf": "binary",
		"regions.prj": `GEOGCS["WGS 84"]`,
	})
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := f.Write([]byte(body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
