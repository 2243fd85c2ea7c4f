// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package database

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

// writeTestShapefile writes two unit-square districts to a shapefile with
// the GDAL writer and returns its path.
func writeTestShapefile(t *testing.T, db *DB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "districts.shp")
	query := `COPY (
		SELECT * FROM (VALUES
			('Pune', 10.0::DOUBLE, 30.0::DOUBLE, ST_GeomFromText('POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))')),
			('Nagpur', 20.0::DOUBLE, 50.0::DOUBLE, ST_GeomFromText('POLYGON((2 2, 4 2, 4 4, 2 4, 2 2))'))
		) AS t(name, Lit05, Lit11, geom)
	) TO ` + quoteLiteral(path) + ` WITH (FORMAT GDAL, DRIVER 'ESRI Shapefile')`
	if _, err := db.Conn().ExecContext(context.Background(), query); err != nil {
		t.Skipf("GDAL shapefile writer unavailable: %v", err)
	}
	return path
}

func TestImportShapefileAndSummarize(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)
	ctx := context.Background()

	shp := writeTestShapefile(t, db)
	ds, err := db.ImportShapefile(ctx, ImportRequest{Name: "districts.zip", ShapefilePath: shp})
	if err != nil {
		t.Fatalf("ImportShapefile: %v", err)
	}
	if ds.FeatureCount != 2 {
		t.Errorf("FeatureCount = %d, want 2", ds.FeatureCount)
	}
	if ds.GeometryColumn() == "" {
		t.Fatalf("no geometry column in %+v", ds.Columns)
	}

	s, err := db.Summarize(ctx, ds.ID)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.GeometryStats.GeometryType != "Polygon" && s.GeometryStats.GeometryType != "MultiPolygon" {
		t.Errorf("GeometryType = %q", s.GeometryStats.GeometryType)
	}
	if s.GeometryStats.Extent != [4]float64{0, 0, 4, 4} {
		t.Errorf("Extent = %v", s.GeometryStats.Extent)
	}
	if s.GeometryStats.Area != 5 {
		t.Errorf("Area = %v, want 5", s.GeometryStats.Area)
	}
	if s.NumAttributes != len(ds.Columns) {
		t.Errorf("NumAttributes = %d, want %d", s.NumAttributes, len(ds.Columns))
	}
}

func TestExportGeoJSON(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)
	ctx := context.Background()

	shp := writeTestShapefile(t, db)
	ds, err := db.ImportShapefile(ctx, ImportRequest{Name: "districts.zip", ShapefilePath: shp})
	if err != nil {
		t.Fatalf("ImportShapefile: %v", err)
	}

	data, err := db.ExportGeoJSON(ctx, ds.ID)
	if err != nil {
		t.Fatalf("ExportGeoJSON: %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID         string         `json:"id"`
			Properties map[string]any `json:"properties"`
			Geometry   struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		t.Fatalf("invalid GeoJSON: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection: %s", data)
	}
	if fc.Features[0].ID != "0" || fc.Features[1].ID != "1" {
		t.Errorf("feature ids = %q, %q", fc.Features[0].ID, fc.Features[1].ID)
	}
	if !strings.Contains(fc.Features[0].Geometry.Type, "Polygon") {
		t.Errorf("geometry type = %q", fc.Features[0].Geometry.Type)
	}
	if _, ok := fc.Features[0].Properties["Lit05"]; !ok {
		t.Errorf("properties missing Lit05: %v", fc.Features[0].Properties)
	}
}

func TestExportGeoJSONWithoutGeometry(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)
	ds := importValues(t, db, "plain", "(1.0)", "a")

	if _, err := db.ExportGeoJSON(context.Background(), ds.ID); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("ExportGeoJSON = %v, want ErrNoGeometry", err)
	}
}

func TestWGS84Geometry(t *testing.T) {
	t.Parallel()

	if got := wgs84Geometry("geom", ""); got != `"geom"` {
		t.Errorf("no CRS: %s", got)
	}
	got := wgs84Geometry("geom", `PROJCS["it's"]`)
	want := `ST_Transform("geom", 'PROJCS["it''s"]', 'EPSG:4326', always_xy := true)`
	if got != want {
		t.Errorf("wgs84Geometry = %s, want %s", got, want)
	}
}

func TestGeometryTypeName(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"MULTIPOLYGON": "MultiPolygon",
		"POINT":        "Point",
		"LINESTRING":   "LineString",
		"CURVE":        "CURVE",
	} {
		if got := geometryTypeName(in); got != want {
			t.Errorf("geometryTypeName(%q) = %q, want %q", in, got, want)
		}
	}
}
