// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package models

// Summary is the descriptive overview of a dataset. Field names match the
// JSON consumed by existing dashboard clients.
type Summary struct {
	NumFeatures   int64         `json:"num_features"`
	NumAttributes int           `json:"num_attributes"` // Includes the geometry column
	GeometryStats GeometryStats `json:"geometry_stats"`
}

// GeometryStats holds aggregate geometry measures in the source CRS units.
type GeometryStats struct {
	GeometryType string     `json:"geometry_type"` // e.g. Polygon, MultiLineString
	CRS          string     `json:"crs"`
	Extent       [4]float64 `json:"extent"` // minx, miny, maxx, maxy
	Area         float64    `json:"area"`
	Length       float64    `json:"length"`
}

// SeriesResponse is the JSON form of an extracted time series.
type SeriesResponse struct {
	Feature string     `json:"feature"`
	Key     string     `json:"key"`
	Outcome string     `json:"outcome"`
	Columns []string   `json:"columns"`
	Years   []string   `json:"years"`
	Rates   []*float64 `json:"rates"` // null where a column held only nulls
}

// ColumnsResponse lists a dataset's attribute columns and the year-suffixed
// families usable as time-series features.
type ColumnsResponse struct {
	DatasetID string         `json:"dataset_id"`
	Columns   []string       `json:"columns"`
	Numeric   []string       `json:"numeric"`
	Families  []SeriesFamily `json:"time_series_families"`
}

// SeriesFamily is a group of year-suffixed columns sharing a normalized key.
type SeriesFamily struct {
	Key     string   `json:"key"`
	Columns []string `json:"columns"`
}
