// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/geostats/internal/artifacts"
	"github.com/tomtom215/geostats/internal/cache"
	"github.com/tomtom215/geostats/internal/config"
	"github.com/tomtom215/geostats/internal/database"
	"github.com/tomtom215/geostats/internal/events"
	"github.com/tomtom215/geostats/internal/middleware"
	"github.com/tomtom215/geostats/internal/models"
	"github.com/tomtom215/geostats/internal/timeseries"
)

// Store is the dataset storage the handlers read and write.
// *database.DB implements it.
type Store interface {
	Ping(ctx context.Context) error
	IsSpatialAvailable() bool
	ImportShapefile(ctx context.Context, req database.ImportRequest) (*models.Dataset, error)
	GetDataset(ctx context.Context, id string) (*models.Dataset, error)
	LatestDataset(ctx context.Context) (*models.Dataset, error)
	ListDatasets(ctx context.Context) ([]*models.Dataset, error)
	CountDatasets(ctx context.Context) (int64, error)
	DeleteDataset(ctx context.Context, id string) error
	SeriesSource(ctx context.Context, id string) (timeseries.Dataset, error)
	ColumnFrame(ctx context.Context, id string, limit int, columns ...string) (*models.Frame, error)
	ExportGeoJSON(ctx context.Context, id string) ([]byte, error)
	Summarize(ctx context.Context, id string) (*models.Summary, error)
}

// EventPublisher announces dataset lifecycle changes. *events.Bus
// implements it; publishing returns once the handlers have run.
type EventPublisher interface {
	PublishImported(ctx context.Context, event *events.DatasetImported) error
	PublishDeleted(ctx context.Context, event *events.DatasetDeleted) error
}

// Handler serves the v1 and legacy HTTP routes.
type Handler struct {
	store     Store
	artifacts *artifacts.Store
	events    EventPublisher
	cache     *cache.Cache
	extractor *timeseries.Extractor
	imports   *importGuard
	perfMon   *middleware.PerformanceMonitor
	config    *config.Config
	startTime time.Time
}

// NewHandler creates the API handler.
//
// Dependencies:
//   - store: dataset catalog and tables
//   - art: static artifact files
//   - pub: dataset event publisher
//   - c: response cache, shared with the event handlers
//   - cfg: application configuration
func NewHandler(store Store, art *artifacts.Store, pub EventPublisher, c *cache.Cache, cfg *config.Config) *Handler {
	var opts []timeseries.Option
	if cfg.Series.Pivot >= 0 {
		opts = append(opts, timeseries.WithPivot(cfg.Series.Pivot))
	}
	return &Handler{
		store:     store,
		artifacts: art,
		events:    pub,
		cache:     c,
		extractor: timeseries.New(opts...),
		imports:   newImportGuard(&cfg.API),
		perfMon:   middleware.NewPerformanceMonitor(1000, 2*time.Second), // Last 1000 requests
		config:    cfg,
		startTime: time.Now(),
	}
}

// PerformanceMonitor returns the monitor the router installs.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// resolveDataset returns the dataset named by id, or the most recent import
// when id is empty. Legacy routes use the fallback.
func (h *Handler) resolveDataset(ctx context.Context, id string) (*models.Dataset, error) {
	if id != "" {
		return h.store.GetDataset(ctx, id)
	}
	ds, err := h.store.LatestDataset(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoUpload
	}
	return ds, err
}

// summary returns the dataset summary, from cache when warm.
func (h *Handler) summary(ctx context.Context, id string) (*models.Summary, error) {
	key := events.SummaryCacheKey(id)
	if v, ok := h.cache.Get(key); ok {
		if s, ok := v.(*models.Summary); ok {
			return s, nil
		}
	}
	s, err := h.store.Summarize(ctx, id)
	if err != nil {
		return nil, err
	}
	h.cache.Set(key, s)
	return s, nil
}
