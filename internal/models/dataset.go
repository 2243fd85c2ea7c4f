// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package models

import "time"

// Dataset is an imported shapefile and the DuckDB table holding its rows.
// Tables are never modified after import, so a Dataset is a stable snapshot.
type Dataset struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`                 // Uploaded archive file name
	ShapefileName string    `json:"shapefile"`            // .shp file found inside the archive
	SourceCRS     string    `json:"source_crs,omitempty"` // WKT from the .prj, empty when absent
	TableName     string    `json:"-"`
	FeatureCount  int64     `json:"num_features"`
	Columns       []Column  `json:"columns"`
	CreatedAt     time.Time `json:"created_at"`
}

// Column describes one attribute column of a dataset.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // DuckDB logical type, e.g. DOUBLE, VARCHAR, GEOMETRY
	Numeric  bool   `json:"numeric"`
	Geometry bool   `json:"geometry,omitempty"`
}

// ColumnNames returns the names of all columns, geometry included, in table order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// AttributeNames returns the non-geometry column names in table order.
func (d *Dataset) AttributeNames() []string {
	names := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		if !c.Geometry {
			names = append(names, c.Name)
		}
	}
	return names
}

// Column returns the named column.
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// GeometryColumn returns the name of the first geometry column, or "".
func (d *Dataset) GeometryColumn() string {
	for _, c := range d.Columns {
		if c.Geometry {
			return c.Name
		}
	}
	return ""
}
