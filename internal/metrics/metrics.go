// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Dataset Metrics
	DatasetImports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_imports_total",
			Help: "Total number of shapefile imports by result",
		},
		[]string{"result"}, // "success", "rejected", "no_shapefile", "error"
	)

	DatasetImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataset_import_duration_seconds",
			Help:    "Duration of shapefile imports, from upload to catalog row",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	DatasetsStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "datasets_stored",
			Help: "Current number of datasets in the catalog",
		},
	)

	DatasetsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datasets_expired_total",
			Help: "Total number of datasets removed by the retention janitor",
		},
	)

	// Series and Chart Metrics
	SeriesExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "series_extractions_total",
			Help: "Total number of time-series extractions by outcome",
		},
		[]string{"outcome"}, // "success", "empty_match", "malformed_input", "error"
	)

	PlotsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plots_generated_total",
			Help: "Total number of chart figures generated",
		},
		[]string{"plot_type", "format"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "summary", "series", "columns"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry or dataset deletion)",
		},
		[]string{"cache_type"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of dataset events published",
		},
		[]string{"topic"},
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_handled_total",
			Help: "Total number of dataset events handled by result",
		},
		[]string{"topic", "result"},
	)

	ArtifactWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_writes_total",
			Help: "Total number of static artifacts written",
		},
		[]string{"artifact"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, classifyError(err)).Inc()
	}
}

// classifyError maps an error to a low-cardinality label value.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "catalog error"):
		return "catalog"
	case strings.Contains(msg, "binder error"):
		return "binder"
	case strings.Contains(msg, "conversion error"), strings.Contains(msg, "invalid input"):
		return "conversion"
	case strings.Contains(msg, "io error"):
		return "io"
	default:
		return "other"
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDatasetImport records the result of a shapefile import.
func RecordDatasetImport(result string, duration time.Duration) {
	DatasetImports.WithLabelValues(result).Inc()
	if result == "success" {
		DatasetImportDuration.Observe(duration.Seconds())
	}
}

// RecordSeriesExtraction records a time-series extraction outcome.
func RecordSeriesExtraction(outcome string) {
	SeriesExtractions.WithLabelValues(outcome).Inc()
}

// RecordPlot records a generated chart figure.
func RecordPlot(plotType, format string) {
	PlotsGenerated.WithLabelValues(plotType, format).Inc()
}

// RecordCacheHit records a cache hit for the given cache type.
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss for the given cache type.
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordEventHandled records the result of handling a dataset event.
func RecordEventHandled(topic string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EventsHandled.WithLabelValues(topic, result).Inc()
}
