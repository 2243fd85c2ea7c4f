// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

// Package models defines the data shared by the database, chart, series and
// API layers: dataset catalog entries, in-memory column frames, summaries
// and response bodies.
//
// JSON tags follow the historical file formats, so a Summary marshals to
// the same keys as static/summary.json.
package models
