// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geostats/internal/models"
)

// featureCollection mirrors the GeoJSON a GeoDataFrame produces with
// to_json: string feature ids counting from "0".
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// wgs84Geometry returns the SQL expression for a geometry column in
// EPSG:4326 lon/lat order. Without a source CRS the geometry is left as is.
func wgs84Geometry(geomCol, sourceCRS string) string {
	expr := quoteIdent(geomCol)
	if strings.TrimSpace(sourceCRS) == "" {
		return expr
	}
	return fmt.Sprintf("ST_Transform(%s, %s, 'EPSG:4326', always_xy := true)", expr, quoteLiteral(sourceCRS))
}

// ExportGeoJSON returns the dataset as a GeoJSON FeatureCollection in
// EPSG:4326 with every attribute column as a property.
func (db *DB) ExportGeoJSON(ctx context.Context, id string) ([]byte, error) {
	if !db.spatialAvailable {
		return nil, ErrSpatialUnavailable
	}
	ds, err := db.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	geomCol := ds.GeometryColumn()
	if geomCol == "" {
		return nil, ErrNoGeometry
	}
	attrs := ds.AttributeNames()

	selects := make([]string, 0, len(attrs)+1)
	selects = append(selects, "ST_AsGeoJSON("+wgs84Geometry(geomCol, ds.SourceCRS)+")")
	for _, name := range attrs {
		selects = append(selects, quoteIdent(name))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), quoteIdent(ds.TableName))

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, ds.FeatureCount)}
	err = timed("ST_AsGeoJSON", ds.TableName, func() error {
		rows, err := db.conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer closeWithLog(rows, "rows")

		var geometry sql.NullString
		values := make([]any, len(attrs))
		ptrs := make([]any, 0, len(attrs)+1)
		ptrs = append(ptrs, &geometry)
		for i := range values {
			ptrs = append(ptrs, &values[i])
		}

		for rows.Next() {
			if err := rows.Scan(ptrs...); err != nil {
				return err
			}
			props := make(map[string]any, len(attrs))
			for i, name := range attrs {
				props[name] = normalizeValue(values[i])
			}
			f := feature{
				ID:         strconv.Itoa(len(fc.Features)),
				Type:       "Feature",
				Properties: props,
			}
			if geometry.Valid {
				f.Geometry = json.RawMessage(geometry.String)
			}
			fc.Features = append(fc.Features, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export geojson: %w", err)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode geojson: %w", err)
	}
	return data, nil
}

// geometryTypeNames maps DuckDB geometry type names to the spelling
// shapely and GeoJSON use.
var geometryTypeNames = map[string]string{
	"POINT":              "Point",
	"LINESTRING":         "LineString",
	"POLYGON":            "Polygon",
	"MULTIPOINT":         "MultiPoint",
	"MULTILINESTRING":    "MultiLineString",
	"MULTIPOLYGON":       "MultiPolygon",
	"GEOMETRYCOLLECTION": "GeometryCollection",
}

func geometryTypeName(duck string) string {
	if name, ok := geometryTypeNames[strings.ToUpper(duck)]; ok {
		return name
	}
	return duck
}

// Summarize computes the dataset summary: feature and attribute counts,
// geometry type, CRS, total bounds and summed area and length in the
// source CRS units.
func (db *DB) Summarize(ctx context.Context, id string) (*models.Summary, error) {
	ds, err := db.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := &models.Summary{
		NumFeatures:   ds.FeatureCount,
		NumAttributes: len(ds.Columns),
		GeometryStats: models.GeometryStats{CRS: ds.SourceCRS},
	}

	geomCol := ds.GeometryColumn()
	if geomCol == "" {
		return summary, nil
	}
	if !db.spatialAvailable {
		return nil, ErrSpatialUnavailable
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	g := quoteIdent(geomCol)
	table := quoteIdent(ds.TableName)

	var geomType sql.NullString
	err = timed("ST_GeometryType", ds.TableName, func() error {
		query := fmt.Sprintf("SELECT ST_GeometryType(%s)::VARCHAR FROM %s WHERE %s IS NOT NULL LIMIT 1", g, table, g)
		err := db.conn.QueryRowContext(ctx, query).Scan(&geomType)
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry type: %w", err)
	}
	if geomType.Valid {
		summary.GeometryStats.GeometryType = geometryTypeName(geomType.String)
	}

	var minX, minY, maxX, maxY, area, length sql.NullFloat64
	err = timed("ST_Extent", ds.TableName, func() error {
		query := fmt.Sprintf(`
			SELECT MIN(ST_XMin(%[1]s)), MIN(ST_YMin(%[1]s)), MAX(ST_XMax(%[1]s)), MAX(ST_YMax(%[1]s)),
			       SUM(ST_Area(%[1]s)), SUM(ST_Length(%[1]s))
			FROM %[2]s`, g, table)
		return db.conn.QueryRowContext(ctx, query).Scan(&minX, &minY, &maxX, &maxY, &area, &length)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute geometry stats: %w", err)
	}

	summary.GeometryStats.Extent = [4]float64{minX.Float64, minY.Float64, maxX.Float64, maxY.Float64}
	summary.GeometryStats.Area = area.Float64
	summary.GeometryStats.Length = length.Float64
	return summary, nil
}
