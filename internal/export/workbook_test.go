// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package export

import (
	"bytes"
	"math"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/geostats/internal/models"
	"github.com/tomtom215/geostats/internal/timeseries"
)

func TestSeriesWorkbook(t *testing.T) {
	t.Parallel()

	result := timeseries.Result{
		Outcome: timeseries.OutcomeSuccess,
		Feature: "PopDensity11",
		Key:     "popdensity",
		Columns: []string{"PopDensity05", "PopDensity11"},
		Years:   []string{"2005", "2011"},
		Rates:   []float64{10.5, math.NaN()},
	}
	summary := &models.Summary{
		NumFeatures:   3,
		NumAttributes: 4,
		GeometryStats: models.GeometryStats{GeometryType: "Polygon", Extent: [4]float64{0, 0, 4, 4}},
	}

	f, err := SeriesWorkbook("PopDensity11", result, summary)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	back, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer back.Close()

	rows, err := back.GetRows(SeriesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("series rows = %d, want header + 2", len(rows))
	}
	if rows[0][1] != "Mean PopDensity11" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "2005" || rows[1][1] != "10.5" || rows[1][2] != "PopDensity05" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][1] != "" {
		t.Errorf("NaN mean should be blank, got %q", rows[2][1])
	}

	geomType, err := back.GetCellValue(SummarySheet, "B7")
	if err != nil {
		t.Fatal(err)
	}
	if geomType != "Polygon" {
		t.Errorf("summary geometry type = %q", geomType)
	}
}

func TestSeriesWorkbookWithoutSummary(t *testing.T) {
	t.Parallel()

	f, err := SeriesWorkbook("x05", timeseries.Result{Outcome: timeseries.OutcomeEmptyMatch}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(SummarySheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 || rows[2][1] != "empty_match" {
		t.Errorf("summary rows = %v", rows)
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"PopDensity11": "PopDensity11_series.xlsx",
		"../evil name": "___evil_name_series.xlsx",
		"":             "series_series.xlsx",
	}
	for in, want := range tests {
		if got := FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}
