// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

/*
database_schema.go - Catalog Schema

Tables:
  - datasets: one row per imported shapefile (name, source CRS, column
    layout as JSON, feature count, import time)
  - ds_<hex id>: one table per dataset, created by CREATE TABLE AS from
    ST_Read and never modified afterwards

created_at is a plain TIMESTAMP stored in UTC so the catalog does not depend
on the ICU extension.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS datasets (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		shapefile VARCHAR NOT NULL,
		source_crs VARCHAR NOT NULL DEFAULT '',
		table_name VARCHAR NOT NULL,
		feature_count BIGINT NOT NULL DEFAULT 0,
		columns VARCHAR NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
