// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package charts

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/geostats/internal/models"
	"github.com/tomtom215/geostats/internal/timeseries"
)

var (
	// ErrUnknownPlotType is returned for a plot type outside PlotTypes.
	ErrUnknownPlotType = errors.New("unknown plot type")

	// ErrFeatureRequired is returned when a plot type is missing a column name.
	ErrFeatureRequired = errors.New("feature is required")

	// ErrNoSeries is returned when a time series figure is requested for a
	// result that did not produce one.
	ErrNoSeries = errors.New("no time series data")
)

const (
	timeSeriesWidth  = 600
	timeSeriesHeight = 400
	timeSeriesMargin = 50

	// sizeMax is the largest marker diameter for proportional scatters.
	sizeMax = 20
)

// TimeSeries builds the line-with-markers figure of a time series result.
func TimeSeries(result timeseries.Result, feature string) (*Figure, error) {
	if result.Outcome != timeseries.OutcomeSuccess || len(result.Years) == 0 {
		return nil, ErrNoSeries
	}
	return timeSeriesFigure(result.Years, result.Rates, feature), nil
}

// EmptyTimeSeries builds a time series figure with no points, as drawn for
// a feature that matched no year columns.
func EmptyTimeSeries(feature string) *Figure {
	return timeSeriesFigure(nil, nil, feature)
}

func timeSeriesFigure(years []string, rates []float64, feature string) *Figure {
	x, y := cartesianAxes("Year", "Mean "+feature)
	return &Figure{
		Data: []Trace{{
			Type:          "scatter",
			Mode:          "lines+markers",
			X:             stringsToAny(years),
			Y:             floatsToAny(rates),
			Line:          &Line{Color: plotlyColors[0], Dash: "solid"},
			Marker:        &Marker{Symbol: "circle"},
			ShowLegend:    boolPtr(false),
			HoverTemplate: "Year=%{x}<br>Mean " + feature + "=%{y}<extra></extra>",
			Orientation:   "v",
			XAxis:         "x",
			YAxis:         "y",
		}},
		Layout: Layout{
			Title:  Title{Text: TimeSeriesPlot.Title()},
			XAxis:  x,
			YAxis:  y,
			Legend: &Legend{TraceGroupGap: 0},
			Width:  timeSeriesWidth,
			Height: timeSeriesHeight,
			Margin: &Margin{L: timeSeriesMargin, R: timeSeriesMargin, T: timeSeriesMargin, B: timeSeriesMargin},
		},
	}
}

// Build creates a figure of the given type from frame columns. feature2 is
// ignored by box and pie charts. Time series figures come from TimeSeries.
func Build(plotType PlotType, frame *models.Frame, feature1, feature2 string) (*Figure, error) {
	if err := CheckFeatures(plotType, feature1, feature2); err != nil {
		return nil, err
	}
	if plotType == TimeSeriesPlot {
		return nil, fmt.Errorf("%s is built from a time series result: %w", plotType, ErrUnknownPlotType)
	}
	for _, col := range plotType.Columns(feature1, feature2) {
		if _, ok := frame.Values(col); !ok {
			return nil, fmt.Errorf("column %q not in frame", col)
		}
	}

	var (
		fig *Figure
		err error
	)
	switch plotType {
	case Scatter:
		fig, err = scatterWithTrendline(frame, feature1, feature2)
	case LinePlot:
		fig = xyFigure("scatter", "lines", frame, feature1, feature2)
	case BarPlot:
		fig = xyFigure("bar", "", frame, feature1, feature2)
	case BoxPlot:
		fig = boxFigure(frame, feature1)
	case PieChart:
		fig, err = pieFigure(frame, feature1)
	case ProportionalScatter:
		fig, err = proportionalScatter(frame, feature1, feature2)
	case CategoricalScatter:
		fig, err = categoricalScatter(frame, feature1, feature2)
	case DensityPlot:
		fig = densityContour(frame, feature1, feature2)
	}
	if err != nil {
		return nil, err
	}
	fig.Layout.Title = Title{Text: plotType.Title()}
	return fig, nil
}

// CheckFeatures validates the plot type and its required column names.
func CheckFeatures(plotType PlotType, feature1, feature2 string) error {
	if !plotType.Valid() {
		return fmt.Errorf("%q: %w", plotType, ErrUnknownPlotType)
	}
	if feature1 == "" {
		return fmt.Errorf("feature1: %w", ErrFeatureRequired)
	}
	if plotType.NeedsFeature2() && feature2 == "" {
		return fmt.Errorf("feature2 for %s: %w", plotType, ErrFeatureRequired)
	}
	return nil
}

func column(frame *models.Frame, name string) []any {
	v, _ := frame.Values(name)
	return sanitize(v)
}

func xyTrace(kind, mode string, frame *models.Frame, f1, f2 string) Trace {
	t := Trace{
		Type:          kind,
		Mode:          mode,
		X:             column(frame, f1),
		Y:             column(frame, f2),
		Marker:        &Marker{Color: plotlyColors[0]},
		ShowLegend:    boolPtr(false),
		HoverTemplate: f1 + "=%{x}<br>" + f2 + "=%{y}<extra></extra>",
		Orientation:   "v",
		XAxis:         "x",
		YAxis:         "y",
	}
	if kind == "scatter" && mode == "" {
		t.Mode = "markers"
	}
	return t
}

func xyFigure(kind, mode string, frame *models.Frame, f1, f2 string) *Figure {
	x, y := cartesianAxes(f1, f2)
	return &Figure{
		Data:   []Trace{xyTrace(kind, mode, frame, f1, f2)},
		Layout: Layout{XAxis: x, YAxis: y, Legend: &Legend{TraceGroupGap: 0}},
	}
}

func scatterWithTrendline(frame *models.Frame, f1, f2 string) (*Figure, error) {
	xs, err := frame.Floats(f1)
	if err != nil {
		return nil, fmt.Errorf("trendline: %w", err)
	}
	ys, err := frame.Floats(f2)
	if err != nil {
		return nil, fmt.Errorf("trendline: %w", err)
	}

	fig := xyFigure("scatter", "markers", frame, f1, f2)
	fit, ok := fitOLS(xs, ys)
	if !ok {
		return fig, nil
	}

	// Trendline spans the observed x values in ascending order.
	var fx []float64
	for i := range xs {
		if finite(xs[i]) && finite(ys[i]) {
			fx = append(fx, xs[i])
		}
	}
	sort.Float64s(fx)
	fy := make([]float64, len(fx))
	for i, x := range fx {
		fy[i] = fit.Slope*x + fit.Intercept
	}

	fig.Data = append(fig.Data, Trace{
		Type: "scatter",
		Mode: "lines",
		X:    floatsToAny(fx),
		Y:    floatsToAny(fy),
		Marker: &Marker{
			Color: plotlyColors[0],
		},
		ShowLegend: boolPtr(false),
		HoverTemplate: fmt.Sprintf(
			"<b>OLS trendline</b><br>%s = %.6g * %s + %.6g<br>R<sup>2</sup>=%.6f<br><br>%s=%%{x}<br>%s=%%{y} <b>(trend)</b><extra></extra>",
			f2, fit.Slope, f1, fit.Intercept, fit.R2, f1, f2),
		XAxis: "x",
		YAxis: "y",
	})
	return fig, nil
}

func boxFigure(frame *models.Frame, f1 string) *Figure {
	_, y := cartesianAxes("", f1)
	return &Figure{
		Data: []Trace{{
			Type:          "box",
			Y:             column(frame, f1),
			Marker:        &Marker{Color: plotlyColors[0]},
			ShowLegend:    boolPtr(false),
			HoverTemplate: f1 + "=%{y}<extra></extra>",
			Orientation:   "v",
			XAxis:         "x",
			YAxis:         "y",
		}},
		Layout: Layout{
			XAxis:  &Axis{Anchor: "y", Domain: []float64{0, 1}},
			YAxis:  y,
			Legend: &Legend{TraceGroupGap: 0},
		},
	}
}

// pieFigure counts rows per distinct feature value. Labels keep the order
// of first appearance.
func pieFigure(frame *models.Frame, f1 string) (*Figure, error) {
	labels, err := frame.Labels(f1)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]float64)
	var order []any
	for _, l := range labels {
		if _, seen := counts[l]; !seen {
			order = append(order, l)
		}
		counts[l]++
	}
	values := make([]float64, len(order))
	for i, l := range order {
		values[i] = counts[l.(string)]
	}
	return &Figure{
		Data: []Trace{{
			Type:          "pie",
			Labels:        order,
			Values:        values,
			ShowLegend:    boolPtr(true),
			HoverTemplate: f1 + "=%{label}<br>count=%{value}<extra></extra>",
		}},
		Layout: Layout{Legend: &Legend{TraceGroupGap: 0}},
	}, nil
}

// proportionalScatter sizes markers by feature1 using Plotly Express's area
// scaling so the largest value renders at sizeMax pixels.
func proportionalScatter(frame *models.Frame, f1, f2 string) (*Figure, error) {
	sizes, err := frame.Floats(f1)
	if err != nil {
		return nil, fmt.Errorf("marker size: %w", err)
	}
	var maxSize float64
	for i, s := range sizes {
		if s < 0 {
			return nil, fmt.Errorf("marker size: %q row %d is negative", f1, i)
		}
		if finite(s) && s > maxSize {
			maxSize = s
		}
	}

	fig := xyFigure("scatter", "markers", frame, f1, f2)
	marker := &Marker{
		Color:    plotlyColors[0],
		Size:     floatsToAny(sizes),
		SizeMode: "area",
		SizeRef:  1,
		Symbol:   "circle",
	}
	if maxSize > 0 {
		marker.SizeRef = 2 * maxSize / (sizeMax * sizeMax)
	}
	fig.Data[0].Marker = marker
	fig.Data[0].HoverTemplate = f1 + "=%{x}<br>" + f2 + "=%{y}<br>" + f1 + "=%{marker.size}<extra></extra>"
	fig.Layout.Legend.ItemSizing = "constant"
	return fig, nil
}

// categoricalScatter colors points by feature1. A numeric feature shares a
// continuous color axis; anything else gets one trace per distinct value.
func categoricalScatter(frame *models.Frame, f1, f2 string) (*Figure, error) {
	nums, err := frame.Floats(f1)
	switch {
	case err == nil:
		fig := xyFigure("scatter", "markers", frame, f1, f2)
		fig.Data[0].Marker = &Marker{Color: floatsToAny(nums), ColorAxis: "coloraxis", Symbol: "circle"}
		fig.Layout.ColorAxis = &ColorAxis{ColorBar: ColorBar{Title: Title{Text: f1}}}
		return fig, nil
	case !errors.Is(err, timeseries.ErrNonNumericColumn):
		return nil, err
	}

	labels, err := frame.Labels(f1)
	if err != nil {
		return nil, err
	}
	xs := column(frame, f1)
	ys := column(frame, f2)

	groups := make(map[string]int)
	var traces []Trace
	for i, l := range labels {
		g, ok := groups[l]
		if !ok {
			g = len(traces)
			groups[l] = g
			traces = append(traces, Trace{
				Type:          "scatter",
				Mode:          "markers",
				Name:          l,
				LegendGroup:   l,
				Marker:        &Marker{Color: plotlyColors[g%len(plotlyColors)], Symbol: "circle"},
				ShowLegend:    boolPtr(true),
				HoverTemplate: f1 + "=" + l + "<br>" + f1 + "=%{x}<br>" + f2 + "=%{y}<extra></extra>",
				Orientation:   "v",
				XAxis:         "x",
				YAxis:         "y",
			})
		}
		traces[g].X = append(traces[g].X, xs[i])
		traces[g].Y = append(traces[g].Y, ys[i])
	}

	x, y := cartesianAxes(f1, f2)
	return &Figure{
		Data:   traces,
		Layout: Layout{XAxis: x, YAxis: y, Legend: &Legend{Title: &Title{Text: f1}, TraceGroupGap: 0}},
	}, nil
}

func densityContour(frame *models.Frame, f1, f2 string) *Figure {
	x, y := cartesianAxes(f1, f2)
	return &Figure{
		Data: []Trace{{
			Type:          "histogram2dcontour",
			X:             column(frame, f1),
			Y:             column(frame, f2),
			Contours:      &Contours{Coloring: "none"},
			Line:          &Line{Color: plotlyColors[0]},
			ShowLegend:    boolPtr(false),
			HoverTemplate: f1 + "=%{x}<br>" + f2 + "=%{y}<br>count=%{z}<extra></extra>",
			XAxis:         "x",
			YAxis:         "y",
		}},
		Layout: Layout{XAxis: x, YAxis: y, Legend: &Legend{TraceGroupGap: 0}},
	}
}

// sanitize replaces NaN and Inf frame values so figures always encode.
func sanitize(vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			continue
		}
		out[i] = v
	}
	return out
}
