// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

// Package timeseries derives time-ordered series from wide-format attribute
// tables whose column names carry a two-digit year suffix, such as
// "PopDensity05" and "PopDensity19".
//
//	res, err := timeseries.Extract(ctx, "PopDensity07", table)
//	switch {
//	case err != nil:
//	    // aggregation failed on a matched column
//	case res.Outcome == timeseries.OutcomeMalformedInput:
//	    // feature has no two-digit suffix
//	case res.Outcome == timeseries.OutcomeEmptyMatch:
//	    // nothing to plot
//	default:
//	    plot(res.Years, res.Rates)
//	}
package timeseries

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// ErrNonNumericColumn is wrapped by Dataset implementations when asked for
// the mean of a column that does not hold numbers.
var ErrNonNumericColumn = errors.New("column is not numeric")

// Dataset is the attribute table a series is extracted from. It must be a
// stable snapshot for the duration of an Extract call.
type Dataset interface {
	// Columns returns the column names in dataset order.
	Columns() []string
	// Mean returns the arithmetic mean of a column over all rows, skipping
	// nulls. A column with only nulls yields NaN.
	Mean(ctx context.Context, column string) (float64, error)
}

// Outcome distinguishes the three ways an extraction can end.
type Outcome int

const (
	// OutcomeMalformedInput means the feature carries no two-digit suffix.
	OutcomeMalformedInput Outcome = iota
	// OutcomeEmptyMatch means the feature is well formed but matched no column.
	OutcomeEmptyMatch
	// OutcomeSuccess means at least one column matched.
	OutcomeSuccess
)

// String returns the metric/label form of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeMalformedInput:
		return "malformed_input"
	case OutcomeEmptyMatch:
		return "empty_match"
	case OutcomeSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Result is an extracted series. Years, Rates and Columns are index-aligned
// and ordered by ascending resolved year.
type Result struct {
	Outcome Outcome
	// Feature is the input as given.
	Feature string
	// Key is the normalized feature key, empty for malformed input.
	Key     string
	Columns []string
	Years   []string
	Rates   []float64
}

// Extractor resolves two-digit years against a pivot. The zero value is not
// usable; construct with New.
type Extractor struct {
	pivot int
	now   func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPivot fixes the pivot year (0-99). A negative value restores the
// clock-derived default.
func WithPivot(pivot int) Option {
	return func(e *Extractor) {
		e.pivot = pivot
	}
}

// WithClock sets the clock used for the default pivot.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// New creates an Extractor. Without options the pivot is the current year
// modulo 100, read at each call.
func New(opts ...Option) *Extractor {
	e := &Extractor{pivot: -1, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pivot returns the pivot the next extraction will use.
func (e *Extractor) Pivot() int {
	if e.pivot >= 0 {
		return e.pivot % 100
	}
	return DefaultPivot(e.now())
}

var defaultExtractor = New()

// Extract runs the default Extractor.
func Extract(ctx context.Context, feature string, ds Dataset) (Result, error) {
	return defaultExtractor.Extract(ctx, feature, ds)
}

type match struct {
	column string
	year   int
}

// Extract locates every column of ds in the same feature family as feature
// and returns their means ordered by resolved year. The trailing digits of
// feature itself only mark it as year-suffixed and are otherwise ignored.
//
// A malformed feature or an empty match is reported through Result.Outcome;
// the error return is reserved for aggregation failures, which are never
// reported as an empty match.
func (e *Extractor) Extract(ctx context.Context, feature string, ds Dataset) (Result, error) {
	res := Result{Outcome: OutcomeMalformedInput, Feature: feature}

	prefix, _, ok := SplitSuffix(feature)
	if !ok {
		return res, nil
	}
	res.Key = NormalizeKey(prefix)

	pivot := e.Pivot()
	var matches []match
	for _, col := range ds.Columns() {
		colPrefix, suffix, ok := SplitSuffix(col)
		if !ok || NormalizeKey(colPrefix) != res.Key {
			continue
		}
		matches = append(matches, match{column: col, year: ResolveYear(suffix, pivot)})
	}

	slices.SortStableFunc(matches, func(a, b match) int {
		return a.year - b.year
	})

	res.Columns = make([]string, 0, len(matches))
	res.Years = make([]string, 0, len(matches))
	res.Rates = make([]float64, 0, len(matches))
	for _, m := range matches {
		mean, err := ds.Mean(ctx, m.column)
		if err != nil {
			return Result{}, fmt.Errorf("mean of column %q: %w", m.column, err)
		}
		res.Columns = append(res.Columns, m.column)
		res.Years = append(res.Years, strconv.Itoa(m.year))
		res.Rates = append(res.Rates, mean)
	}

	if len(matches) == 0 {
		res.Outcome = OutcomeEmptyMatch
	} else {
		res.Outcome = OutcomeSuccess
	}
	return res, nil
}
