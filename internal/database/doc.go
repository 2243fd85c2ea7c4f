// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

// Package database stores imported shapefiles in DuckDB.
//
// # Overview
//
// Every upload becomes an immutable table named ds_<hex id>, created with
// CREATE TABLE AS from the spatial extension's ST_Read. A datasets catalog
// table records the upload name, the source CRS from the .prj file and the
// column layout, so requests never re-read the shapefile.
//
// Core Database Operations:
//   - database.go: Lifecycle (open, initialize, checkpoint, close)
//   - database_extensions.go: spatial extension installation with hard timeouts
//   - database_schema.go: Catalog schema
//   - crud_datasets.go: Import, lookup, listing, deletion and retention
//   - table.go: Column means for time-series extraction and column frames for charts
//   - spatial.go: GeoJSON export in EPSG:4326 and geometry summaries
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	ds, err := db.ImportShapefile(ctx, database.ImportRequest{
//	    Name:          "districts.zip",
//	    ShapefilePath: shp,
//	    SourceCRS:     wkt,
//	})
//	table, err := db.Table(ctx, ds.ID)
//	result, err := timeseries.Extract(ctx, "PopDensity11", table)
//
// # Safety
//
// Attribute names come from user uploads and are always quoted with
// quoteIdent. Values DuckDB cannot bind as parameters (ST_Read paths, CRS
// strings) go through quoteLiteral. Dataset IDs must parse as UUIDs before
// they are turned into table names.
package database
