// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

// Package export writes extracted series and dataset summaries to XLSX
// workbooks.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/geostats/internal/models"
	"github.com/tomtom215/geostats/internal/timeseries"
)

// Sheet names.
const (
	SeriesSheet  = "Series"
	SummarySheet = "Summary"
)

// ContentType is the MIME type of XLSX workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SeriesWorkbook builds a workbook with the series on one sheet and the
// dataset summary on another. summary may be nil. The caller closes the
// returned file.
func SeriesWorkbook(feature string, result timeseries.Result, summary *models.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SeriesSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSeries(f, feature, result); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummary(f, feature, result, summary); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// FileName returns a download name for the series of feature.
func FileName(feature string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, feature)
	if clean == "" {
		clean = "series"
	}
	return clean + "_series.xlsx"
}

func writeSeries(f *excelize.File, feature string, result timeseries.Result) error {
	headers := []any{"Year", "Mean " + feature, "Column"}
	if err := f.SetSheetRow(SeriesSheet, "A1", &headers); err != nil {
		return fmt.Errorf("write series header: %w", err)
	}
	for i, year := range result.Years {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{year, nil, ""}
		if i < len(result.Rates) && !math.IsNaN(result.Rates[i]) && !math.IsInf(result.Rates[i], 0) {
			row[1] = result.Rates[i]
		}
		if i < len(result.Columns) {
			row[2] = result.Columns[i]
		}
		if err := f.SetSheetRow(SeriesSheet, cell, &row); err != nil {
			return fmt.Errorf("write series row %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(SeriesSheet, "A", "A", 10); err != nil {
		return err
	}
	return f.SetColWidth(SeriesSheet, "B", "C", 18)
}

func writeSummary(f *excelize.File, feature string, result timeseries.Result, summary *models.Summary) error {
	rows := [][]any{
		{"Feature", feature},
		{"Key", result.Key},
		{"Outcome", result.Outcome.String()},
		{"Years", len(result.Years)},
	}
	if summary != nil {
		g := summary.GeometryStats
		rows = append(rows,
			[]any{"Features", summary.NumFeatures},
			[]any{"Attributes", summary.NumAttributes},
			[]any{"Geometry type", g.GeometryType},
			[]any{"CRS", g.CRS},
			[]any{"Min X", g.Extent[0]},
			[]any{"Min Y", g.Extent[1]},
			[]any{"Max X", g.Extent[2]},
			[]any{"Max Y", g.Extent[3]},
			[]any{"Area", g.Area},
			[]any{"Length", g.Length},
		)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}
	return f.SetColWidth(SummarySheet, "A", "B", 22)
}
