// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

/*
Package api provides the HTTP layer of GeoStats.

Key Components:

  - Router: chi route table and middleware stack (chi_router.go)
  - Handler: dataset, series, plot, health and legacy handlers
  - ResponseWriter: the APIResponse envelope used by every v1 route
  - classify: maps sentinel errors to status codes and client-safe messages
  - importGuard: rate limiter and circuit breaker around shapefile imports

API Categories:

1. Dataset Endpoints (/api/v1/datasets):
  - POST / imports a zipped shapefile, GET / lists datasets
  - GET /{id}/columns, /{id}/map, /{id}/summary
  - POST /{id}/plots builds a figure as JSON or PNG
  - GET /{id}/series and /{id}/series.xlsx extract the year series of a feature

2. Legacy Endpoints:
  - POST /upload, GET|POST /generate_map, POST /generate_plot, GET /summary
  - GET /static/* serves the artifact tree

Legacy routes keep the bodies and status codes of the original frontend
contract. Without a dataset_id they work on the most recent upload.

3. Operations:
  - /api/v1/health, /health/live, /health/ready, /health/performance
  - /metrics (Prometheus) and /swagger/*

Middleware Stack:

Requests pass through request ID and logging context, RealIP, Recoverer,
CORS, the performance monitor, then per-group httprate limits, security
headers and Prometheus instrumentation. GeoJSON responses are gzipped.

Error Handling:

v1 errors use the envelope:

	{
	  "success": false,
	  "error": {"code": "NO_MATCHING_COLUMNS", "message": "...", "request_id": "..."},
	  "meta": {"timestamp": "...", "duration_ms": 3}
	}

Legacy errors are {"error": "..."}.

Thread Safety:

Handlers hold no per-request state. The response cache and artifact store
are safe for concurrent use.
*/
package api
