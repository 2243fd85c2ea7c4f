// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

/*
Package metrics provides Prometheus metrics for GeoStats.

All collectors are registered on the default registry through promauto and
exposed at /metrics:

	curl http://localhost:5000/metrics

# Available Metrics

Database:
  - duckdb_query_duration_seconds{operation, table}
  - duckdb_query_errors_total{operation, table, error_type}

Datasets:
  - dataset_imports_total{result}
  - dataset_import_duration_seconds
  - datasets_stored
  - datasets_expired_total

Series and charts:
  - series_extractions_total{outcome}
  - plots_generated_total{plot_type, format}

API:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Cache and events:
  - cache_hits_total, cache_misses_total, cache_evictions_total{cache_type}
  - events_published_total{topic}
  - events_handled_total{topic, result}
  - artifact_writes_total{artifact}

The endpoint label is the chi route pattern, never the raw path, so dataset
IDs do not create new series.
*/
package metrics
