// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

/*
Command server runs the GeoStats backend.

Startup order:

 1. Configuration: Koanf v2, defaults < config file < environment
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB with the spatial extension
 4. Artifacts: the static directory served under /static
 5. Event bus and router: Watermill gochannel pub/sub
 6. HTTP: chi router with CORS, rate limiting and Prometheus metrics
 7. Supervisor tree: suture v4, started last

Supervised services:

	RootSupervisor ("geostats")
	├── DataSupervisor ("data-layer")
	│   └── retention-janitor (DATASET_RETENTION > 0)
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-router
	└── APISupervisor ("api-layer")
	    └── http-server

# Configuration

Common environment variables:

	HTTP_PORT            listen port (default 5000)
	DUCKDB_PATH          database file (default /data/geostats.duckdb)
	UPLOAD_DIR           extracted uploads (default /data/uploads)
	STATIC_DIR           generated files (default /data/static)
	SERIES_PIVOT_YEAR    two-digit year pivot, -1 for the current year
	DATASET_RETENTION    delete datasets older than this, e.g. 720h
	CORS_ORIGINS         comma-separated allowed origins
	LOG_LEVEL, LOG_FORMAT

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains for
up to HTTP_TIMEOUT, the event router finishes in-flight handlers, and the
database is closed after the tree has stopped.
*/
package main
