// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

/*
Package middleware provides HTTP middleware shared by the GeoStats routers.

Key Components:

  - RequestID: reuses a sane upstream X-Request-ID or generates a UUID, and
    seeds the logging context with request and correlation IDs
  - PrometheusMetrics: request count, latency and in-flight instrumentation
    labeled by chi route pattern
  - Compression: pooled gzip for large bodies (GeoJSON)
  - PerformanceMonitor: sliding window of recent latencies reported by the
    health endpoint, with slow request logging

The net/http-style handlers are adapted to chi in internal/api:

	r.With(chiMiddleware(middleware.PrometheusMetrics)).
	    With(chiMiddleware(middleware.Compression)).
	    Get("/api/v1/datasets/{id}/map", h.DatasetMap)

Metric series use route patterns so dataset IDs in paths do not grow
label cardinality.
*/
package middleware
