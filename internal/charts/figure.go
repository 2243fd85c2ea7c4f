// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

// Package charts builds Plotly figures from dataset columns and extracted
// time series, and renders simple figures to PNG.
//
// Figures serialize to the JSON Plotly.newPlot and react-plotly.js accept:
//
//	{"data": [{"type": "scatter", "x": [...], "y": [...]}], "layout": {...}}
package charts

import (
	"math"

	"github.com/goccy/go-json"
)

// Figure is a Plotly figure.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace. Only the attributes GeoStats emits are modeled.
// X, Y and Labels hold raw values so categorical axes and nulls survive.
type Trace struct {
	Type          string    `json:"type"`
	Name          string    `json:"name"`
	Mode          string    `json:"mode,omitempty"`
	X             []any     `json:"x,omitempty"`
	Y             []any     `json:"y,omitempty"`
	Labels        []any     `json:"labels,omitempty"`
	Values        []float64 `json:"values,omitempty"`
	Marker        *Marker   `json:"marker,omitempty"`
	Line          *Line     `json:"line,omitempty"`
	Contours      *Contours `json:"contours,omitempty"`
	ShowLegend    *bool     `json:"showlegend,omitempty"`
	LegendGroup   string    `json:"legendgroup,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
	Orientation   string    `json:"orientation,omitempty"`
	XAxis         string    `json:"xaxis,omitempty"`
	YAxis         string    `json:"yaxis,omitempty"`
}

// Marker styles scatter points and bars.
type Marker struct {
	Color     any     `json:"color,omitempty"` // A single color or one value per point
	Size      []any   `json:"size,omitempty"`
	SizeMode  string  `json:"sizemode,omitempty"`
	SizeRef   float64 `json:"sizeref,omitempty"`
	Symbol    string  `json:"symbol,omitempty"`
	ColorAxis string  `json:"coloraxis,omitempty"`
}

// Line styles line traces and contour lines.
type Line struct {
	Color string `json:"color,omitempty"`
	Dash  string `json:"dash,omitempty"`
}

// Contours configures histogram2dcontour traces.
type Contours struct {
	Coloring string `json:"coloring"`
}

// Layout is the subset of the Plotly layout GeoStats sets.
type Layout struct {
	Title     Title      `json:"title"`
	XAxis     *Axis      `json:"xaxis,omitempty"`
	YAxis     *Axis      `json:"yaxis,omitempty"`
	Legend    *Legend    `json:"legend,omitempty"`
	ColorAxis *ColorAxis `json:"coloraxis,omitempty"`
	Width     int        `json:"width,omitempty"`
	Height    int        `json:"height,omitempty"`
	Margin    *Margin    `json:"margin,omitempty"`
}

// Title is a Plotly title object.
type Title struct {
	Text string `json:"text"`
}

// Axis is a cartesian axis.
type Axis struct {
	Title  Title     `json:"title"`
	Anchor string    `json:"anchor,omitempty"`
	Domain []float64 `json:"domain,omitempty"`
}

// Legend configures the legend.
type Legend struct {
	Title         *Title `json:"title,omitempty"`
	TraceGroupGap int    `json:"tracegroupgap"`
	ItemSizing    string `json:"itemsizing,omitempty"`
}

// ColorAxis is a shared continuous color scale.
type ColorAxis struct {
	ColorBar ColorBar `json:"colorbar"`
}

// ColorBar labels a color axis.
type ColorBar struct {
	Title Title `json:"title"`
}

// Margin is the plot margin in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// JSON encodes the figure.
func (f *Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}

// plotlyColors is Plotly's default qualitative palette.
var plotlyColors = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

func boolPtr(b bool) *bool { return &b }

// cartesianAxes returns the x/y axes with px's default anchoring.
func cartesianAxes(xTitle, yTitle string) (*Axis, *Axis) {
	return &Axis{Title: Title{Text: xTitle}, Anchor: "y", Domain: []float64{0, 1}},
		&Axis{Title: Title{Text: yTitle}, Anchor: "x", Domain: []float64{0, 1}}
}

// floatsToAny converts floats to JSON-safe values, NaN and Inf becoming nil.
func floatsToAny(xs []float64) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out[i] = x
		}
	}
	return out
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
