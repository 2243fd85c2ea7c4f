// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package models

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/geostats/internal/timeseries"
)

// Frame is an in-memory column-oriented slice of an attribute table. Values
// are whatever the database driver scanned (float64, int64, string, bool,
// time.Time, nil). Frame implements timeseries.Dataset.
type Frame struct {
	names  []string
	values map[string][]any
	rows   int
}

// NewFrame creates an empty frame with the given row count.
func NewFrame(rows int) *Frame {
	return &Frame{values: make(map[string][]any), rows: rows}
}

// Add appends a column. It panics if the length disagrees with the frame's
// row count or the name is already present.
func (f *Frame) Add(name string, values []any) *Frame {
	if len(values) != f.rows {
		panic(fmt.Sprintf("models: column %q has %d values, frame has %d rows", name, len(values), f.rows))
	}
	if _, dup := f.values[name]; dup {
		panic(fmt.Sprintf("models: duplicate column %q", name))
	}
	f.names = append(f.names, name)
	f.values[name] = values
	return f
}

// AddFloats appends a numeric column. NaN entries are stored as nulls.
func (f *Frame) AddFloats(name string, values ...float64) *Frame {
	vs := make([]any, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			vs[i] = v
		}
	}
	return f.Add(name, vs)
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.rows }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// Values returns the raw values of a column.
func (f *Frame) Values(name string) ([]any, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Floats returns a column as float64s with NaN for nulls. A column holding
// any non-numeric value returns an error wrapping
// timeseries.ErrNonNumericColumn.
func (f *Frame) Floats(name string) ([]float64, error) {
	vals, ok := f.values[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		x, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%q row %d holds %T: %w", name, i, v, timeseries.ErrNonNumericColumn)
		}
		out[i] = x
	}
	return out, nil
}

// Labels returns a column formatted as strings, for categorical axes.
// Nulls become the empty string.
func (f *Frame) Labels(name string) ([]string, error) {
	vals, ok := f.values[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		switch x := v.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = x
		case time.Time:
			out[i] = x.Format(time.RFC3339)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out, nil
}

// Mean implements timeseries.Dataset. Nulls and NaNs are skipped; a column
// without any value yields NaN.
func (f *Frame) Mean(_ context.Context, column string) (float64, error) {
	xs, err := f.Floats(column)
	if err != nil {
		return 0, err
	}
	var sum float64
	var n int
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return math.NaN(), nil
	}
	return sum / float64(n), nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}
