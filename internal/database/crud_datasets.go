// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/models"
)

// ImportRequest describes a shapefile to load into a new dataset table.
type ImportRequest struct {
	ID            string // Optional; a random UUID is generated when empty
	Name          string // Uploaded archive name
	ShapefilePath string
	SourceCRS     string // WKT from the .prj file, empty when absent
}

// ImportShapefile reads the shapefile with ST_Read into a new table and
// records it in the catalog.
func (db *DB) ImportShapefile(ctx context.Context, req ImportRequest) (*models.Dataset, error) {
	if !db.spatialAvailable {
		return nil, ErrSpatialUnavailable
	}
	source := "SELECT * FROM ST_Read(" + quoteLiteral(req.ShapefilePath) + ")"
	return db.importFromQuery(ctx, req, source)
}

// importFromQuery materializes source into the dataset table and inserts
// the catalog row. The table is dropped again if cataloging fails.
func (db *DB) importFromQuery(ctx context.Context, req ImportRequest, source string) (*models.Dataset, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	table, err := tableNameFor(req.ID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err = timed("CREATE", table, func() error {
		_, err := db.conn.ExecContext(ctx, "CREATE TABLE "+quoteIdent(table)+" AS "+source)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load shapefile: %w", err)
	}

	ds, err := db.catalogTable(ctx, req, table)
	if err != nil {
		if _, dropErr := db.conn.ExecContext(context.WithoutCancel(ctx), "DROP TABLE IF EXISTS "+quoteIdent(table)); dropErr != nil {
			logging.Warn().Err(dropErr).Str("table", table).Msg("Failed to drop table after failed import")
		}
		return nil, err
	}
	return ds, nil
}

func (db *DB) catalogTable(ctx context.Context, req ImportRequest, table string) (*models.Dataset, error) {
	columns, err := db.describeTable(ctx, table)
	if err != nil {
		return nil, err
	}

	var count int64
	err = timed("COUNT", table, func() error {
		return db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&count)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count features: %w", err)
	}

	columnsJSON, err := json.Marshal(columns)
	if err != nil {
		return nil, fmt.Errorf("failed to encode columns: %w", err)
	}

	ds := &models.Dataset{
		ID:            req.ID,
		Name:          req.Name,
		ShapefileName: shapefileBase(req.ShapefilePath),
		SourceCRS:     req.SourceCRS,
		TableName:     table,
		FeatureCount:  count,
		Columns:       columns,
		CreatedAt:     time.Now().UTC(),
	}

	err = timed("INSERT", "datasets", func() error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO datasets (id, name, shapefile, source_crs, table_name, feature_count, columns, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ds.ID, ds.Name, ds.ShapefileName, ds.SourceCRS, ds.TableName, ds.FeatureCount, string(columnsJSON), ds.CreatedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert dataset: %w", err)
	}
	return ds, nil
}

// describeTable reads the column layout of a dataset table in table order.
func (db *DB) describeTable(ctx context.Context, table string) ([]models.Column, error) {
	var columns []models.Column
	err := timed("DESCRIBE", table, func() error {
		rows, err := db.conn.QueryContext(ctx, `
			SELECT column_name, data_type
			FROM information_schema.columns
			WHERE table_name = ?
			ORDER BY ordinal_position`, table)
		if err != nil {
			return err
		}
		defer closeWithLog(rows, "rows")

		for rows.Next() {
			var c models.Column
			if err := rows.Scan(&c.Name, &c.Type); err != nil {
				return err
			}
			c.Numeric = isNumericType(c.Type)
			c.Geometry = isGeometryType(c.Type)
			columns = append(columns, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe table: %w", err)
	}
	return columns, nil
}

// isNumericType reports whether AVG accepts the DuckDB type.
func isNumericType(t string) bool {
	t = strings.ToUpper(t)
	if strings.HasPrefix(t, "DECIMAL") || strings.HasPrefix(t, "NUMERIC") {
		return true
	}
	switch t {
	case "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT", "UHUGEINT",
		"FLOAT", "REAL", "DOUBLE":
		return true
	}
	return false
}

func isGeometryType(t string) bool {
	t = strings.ToUpper(t)
	return t == "GEOMETRY" || strings.HasPrefix(t, "GEOMETRY(")
}

func shapefileBase(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

const datasetColumns = `id, name, shapefile, source_crs, table_name, feature_count, columns, created_at`

func scanDataset(scan func(dest ...any) error) (*models.Dataset, error) {
	var ds models.Dataset
	var columnsJSON string
	if err := scan(&ds.ID, &ds.Name, &ds.ShapefileName, &ds.SourceCRS, &ds.TableName,
		&ds.FeatureCount, &columnsJSON, &ds.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(columnsJSON), &ds.Columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns of dataset %s: %w", ds.ID, err)
	}
	ds.CreatedAt = ds.CreatedAt.UTC()
	return &ds, nil
}

// GetDataset returns the catalog entry for id.
func (db *DB) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var ds *models.Dataset
	err := timed("SELECT", "datasets", func() error {
		row := db.conn.QueryRowContext(ctx, "SELECT "+datasetColumns+" FROM datasets WHERE id = ?", id)
		var err error
		ds, err = scanDataset(row.Scan)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return ds, nil
}

// LatestDataset returns the most recently imported dataset.
func (db *DB) LatestDataset(ctx context.Context) (*models.Dataset, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var ds *models.Dataset
	err := timed("SELECT", "datasets", func() error {
		row := db.conn.QueryRowContext(ctx,
			"SELECT "+datasetColumns+" FROM datasets ORDER BY created_at DESC, id DESC LIMIT 1")
		var err error
		ds, err = scanDataset(row.Scan)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest dataset: %w", err)
	}
	return ds, nil
}

// ListDatasets returns all datasets, newest first.
func (db *DB) ListDatasets(ctx context.Context) ([]*models.Dataset, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	datasets := []*models.Dataset{}
	err := timed("SELECT", "datasets", func() error {
		rows, err := db.conn.QueryContext(ctx,
			"SELECT "+datasetColumns+" FROM datasets ORDER BY created_at DESC, id DESC")
		if err != nil {
			return err
		}
		defer closeWithLog(rows, "rows")

		for rows.Next() {
			ds, err := scanDataset(rows.Scan)
			if err != nil {
				return err
			}
			datasets = append(datasets, ds)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return datasets, nil
}

// CountDatasets returns the number of catalog entries.
func (db *DB) CountDatasets(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM datasets").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count datasets: %w", err)
	}
	return n, nil
}

// DeleteDataset drops the dataset table and its catalog row.
func (db *DB) DeleteDataset(ctx context.Context, id string) error {
	ds, err := db.GetDataset(ctx, id)
	if err != nil {
		return err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return timed("DELETE", ds.TableName, func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(ds.TableName)); err != nil {
			return fmt.Errorf("failed to drop dataset table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM datasets WHERE id = ?", ds.ID); err != nil {
			return fmt.Errorf("failed to delete dataset: %w", err)
		}
		return tx.Commit()
	})
}

// DeleteDatasetsOlderThan removes every dataset imported before cutoff and
// returns the IDs removed. Datasets that fail to delete are logged and
// retried on the next call.
func (db *DB) DeleteDatasetsOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, "SELECT id FROM datasets WHERE created_at < ? ORDER BY created_at", cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query expired datasets: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("failed to scan dataset id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		closeQuietly(rows)
		return nil, fmt.Errorf("failed to iterate expired datasets: %w", err)
	}
	closeWithLog(rows, "rows")

	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := db.DeleteDataset(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // removed concurrently
			}
			logging.Warn().Err(err).Str("dataset_id", id).Msg("Failed to delete expired dataset")
			continue
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}
