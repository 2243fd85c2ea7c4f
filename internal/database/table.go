// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/geostats/internal/models"
	"github.com/tomtom215/geostats/internal/timeseries"
)

// Table is a read handle on one dataset table. It implements
// timeseries.Dataset over the attribute columns.
type Table struct {
	db *DB
	ds *models.Dataset
}

// Table returns a handle on the dataset's table.
func (db *DB) Table(ctx context.Context, id string) (*Table, error) {
	ds, err := db.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Table{db: db, ds: ds}, nil
}

// SeriesSource returns the dataset's table as a timeseries.Dataset.
func (db *DB) SeriesSource(ctx context.Context, id string) (timeseries.Dataset, error) {
	t, err := db.Table(ctx, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Dataset returns the catalog entry the table was opened from.
func (t *Table) Dataset() *models.Dataset { return t.ds }

// Columns returns the attribute column names in table order.
func (t *Table) Columns() []string { return t.ds.AttributeNames() }

// Mean returns AVG(column), or NaN when every value is NULL.
func (t *Table) Mean(ctx context.Context, column string) (float64, error) {
	col, ok := t.ds.Column(column)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if !col.Numeric {
		return 0, fmt.Errorf("column %q is %s: %w", column, col.Type, timeseries.ErrNonNumericColumn)
	}

	ctx, cancel := t.db.ensureContext(ctx)
	defer cancel()

	var mean sql.NullFloat64
	err := timed("AVG", t.ds.TableName, func() error {
		query := fmt.Sprintf("SELECT AVG(%s)::DOUBLE FROM %s", quoteIdent(column), quoteIdent(t.ds.TableName))
		return t.db.conn.QueryRowContext(ctx, query).Scan(&mean)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to average %q: %w", column, err)
	}
	if !mean.Valid {
		return math.NaN(), nil
	}
	return mean.Float64, nil
}

// ColumnFrame loads up to limit rows of the named attribute columns. A
// non-positive limit loads every row.
func (db *DB) ColumnFrame(ctx context.Context, id string, limit int, columns ...string) (*models.Frame, error) {
	ds, err := db.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns requested", ErrUnknownColumn)
	}

	seen := make(map[string]bool, len(columns))
	var unique []string
	quoted := make([]string, 0, len(columns))
	for _, name := range columns {
		col, ok := ds.Column(name)
		if !ok || col.Geometry {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		unique = append(unique, name)
		quoted = append(quoted, quoteIdent(name))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), quoteIdent(ds.TableName))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	cols := make([][]any, len(unique))
	err = timed("SELECT", ds.TableName, func() error {
		rows, err := db.conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer closeWithLog(rows, "rows")

		dest := make([]any, len(unique))
		ptrs := make([]any, len(unique))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		for rows.Next() {
			if err := rows.Scan(ptrs...); err != nil {
				return err
			}
			for i, v := range dest {
				cols[i] = append(cols[i], normalizeValue(v))
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load columns: %w", err)
	}

	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0])
	}
	frame := models.NewFrame(rows)
	for i, name := range unique {
		values := cols[i]
		if values == nil {
			values = []any{}
		}
		frame.Add(name, values)
	}
	return frame, nil
}

// normalizeValue converts driver-specific scan results into the plain Go
// types charts and JSON encoding understand. Non-finite floats become nil.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case duckdb.Decimal:
		return x.Float64()
	case *big.Int:
		if x == nil {
			return nil
		}
		f, _ := new(big.Float).SetInt(x).Float64()
		return f
	case []byte:
		return string(x)
	default:
		return v
	}
}
