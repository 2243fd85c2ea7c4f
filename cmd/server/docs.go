// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

// Package main provides the GeoStats HTTP server
//
// @title GeoStats API
// @version 1.0
// @description Shapefile upload, map export, statistical charts and year-series extraction.
// @description
// @description ## Routes
// @description
// @description - `/api/v1/...`: dataset-scoped JSON API with a uniform response envelope
// @description - `/upload`, `/generate_map`, `/generate_plot`, `/summary`: single-dataset routes
// @description   that write fixed files under `/static` and answer with the historical bodies
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address. Uploads are limited
// @description to 10 per minute and chart generation to 60 per minute.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "success": false,
// @description   "error": {
// @description     "code": "NO_MATCHING_COLUMNS",
// @description     "message": "No columns share the feature's base name",
// @description     "request_id": "b7c3..."
// @description   },
// @description   "meta": {"timestamp": "2026-10-14T12:34:56Z"}
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/geostats/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:5000
// @BasePath /
// @schemes http https
//
// @tag.name Datasets
// @tag.description Upload, list, inspect and delete shapefile datasets
//
// @tag.name Series
// @tag.description Year-series extraction over families of year-suffixed columns
//
// @tag.name Charts
// @tag.description Chart figures as JSON or PNG
//
// @tag.name Map
// @tag.description GeoJSON export reprojected to WGS84
//
// @tag.name Legacy
// @tag.description Single-dataset routes backed by files under /static
//
// @tag.name Core
// @tag.description Health checks and runtime statistics
package main
