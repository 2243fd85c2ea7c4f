// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/geostats/internal/config"
	"github.com/tomtom215/geostats/internal/middleware"
)

// Router sets up HTTP routes using the Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for handler with middleware configured from sec.
func NewRouter(handler *Handler, sec *config.SecurityConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(sec)),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(router.handler.PerformanceMonitor().Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/performance", router.handler.PerformanceStats)
	})

	// ========================
	// Dataset Endpoints
	// ========================
	r.Route("/api/v1/datasets", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.With(router.chiMiddleware.RateLimitUpload()).Post("/", router.handler.UploadDataset)
		r.Get("/", router.handler.ListDatasets)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", router.handler.GetDataset)
			r.Delete("/", router.handler.DeleteDataset)
			r.Get("/columns", router.handler.DatasetColumns)
			r.With(chiMiddleware(middleware.Compression)).Get("/map", router.handler.DatasetMap)
			r.Get("/summary", router.handler.DatasetSummary)
			r.With(router.chiMiddleware.RateLimitPlot()).Post("/plots", router.handler.CreatePlot)
			r.Get("/series", router.handler.DatasetSeries)
			r.Get("/series.xlsx", router.handler.DatasetSeriesWorkbook)
		})
	})

	// ========================
	// Legacy Endpoints
	// ========================
	// Paths and bodies of the original frontend; each accepts an optional
	// dataset_id and otherwise works on the most recent upload.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.With(router.chiMiddleware.RateLimitUpload()).Post("/upload", router.handler.Upload)
		r.Get("/generate_map", router.handler.GenerateMap)
		r.Post("/generate_map", router.handler.GenerateMap)
		r.With(router.chiMiddleware.RateLimitPlot()).Post("/generate_plot", router.handler.GeneratePlot)
		r.Get("/summary", router.handler.LegacySummary)
	})

	// ========================
	// Static Artifacts
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware(middleware.Compression))
		r.Get("/static/*", router.serveStatic())
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}

// serveStatic serves the artifact tree under /static/. Directory listings
// are refused. Artifacts are rewritten in place, so clients revalidate.
func (router *Router) serveStatic() http.HandlerFunc {
	root := router.handler.artifacts.Root()
	fs := http.StripPrefix("/static/", http.FileServer(noListingFS{http.Dir(root)}))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".geojson") {
			w.Header().Set("Content-Type", "application/geo+json")
		}
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fs.ServeHTTP(w, r)
	}
}

// noListingFS hides directories from http.FileServer.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
