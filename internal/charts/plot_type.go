// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package charts

// PlotType names a chart kind accepted by the plot endpoints.
type PlotType string

// Supported plot types.
const (
	TimeSeriesPlot      PlotType = "time_series_plot"
	Scatter             PlotType = "scatter"
	LinePlot            PlotType = "line"
	BoxPlot             PlotType = "box"
	PieChart            PlotType = "pie"
	BarPlot             PlotType = "bar"
	ProportionalScatter PlotType = "proportional_scatter"
	CategoricalScatter  PlotType = "categorical_scatter"
	DensityPlot         PlotType = "density"
)

// PlotTypes lists every supported plot type.
var PlotTypes = []PlotType{
	TimeSeriesPlot, Scatter, LinePlot, BoxPlot, PieChart,
	BarPlot, ProportionalScatter, CategoricalScatter, DensityPlot,
}

var plotTitles = map[PlotType]string{
	TimeSeriesPlot:      "Time Series Plot",
	Scatter:             "Scatter Plot",
	LinePlot:            "Line Plot",
	BoxPlot:             "Box Plot",
	PieChart:            "Pie Chart",
	BarPlot:             "Bar Plot",
	ProportionalScatter: "Proportional Scatter Plot",
	CategoricalScatter:  "Categorical Scatter Plot",
	DensityPlot:         "Density Plot",
}

// Valid reports whether p is a supported plot type.
func (p PlotType) Valid() bool {
	_, ok := plotTitles[p]
	return ok
}

// Title returns the figure title for p.
func (p PlotType) Title() string { return plotTitles[p] }

// NeedsFeature2 reports whether p plots a second column.
func (p PlotType) NeedsFeature2() bool {
	switch p {
	case TimeSeriesPlot, BoxPlot, PieChart:
		return false
	default:
		return p.Valid()
	}
}

// Columns returns the dataset columns p reads.
func (p PlotType) Columns(feature1, feature2 string) []string {
	switch {
	case p == TimeSeriesPlot:
		return nil
	case p.NeedsFeature2():
		return []string{feature1, feature2}
	default:
		return []string{feature1}
	}
}
