// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrRenderUnsupported is returned by RenderPNG for trace types without a
// static renderer (pie, histogram2dcontour).
var ErrRenderUnsupported = errors.New("trace type cannot be rendered to PNG")

const (
	defaultWidthPx  = 700
	defaultHeightPx = 450
	pngDPI          = 96
)

// RenderPNG draws scatter, line, bar and box traces of fig as a PNG image
// sized from the figure layout.
func RenderPNG(w io.Writer, fig *Figure) error {
	p := plot.New()
	p.Title.Text = fig.Layout.Title.Text
	p.Title.TextStyle.Font.Size = vg.Points(14)
	if fig.Layout.XAxis != nil {
		p.X.Label.Text = fig.Layout.XAxis.Title.Text
	}
	if fig.Layout.YAxis != nil {
		p.Y.Label.Text = fig.Layout.YAxis.Title.Text
	}
	p.Add(plotter.NewGrid())

	for i, t := range fig.Data {
		c := traceColor(t, i)
		var err error
		switch t.Type {
		case "scatter":
			err = addXY(p, t, c)
		case "bar":
			err = addBars(p, t, c)
		case "box":
			err = addBox(p, t, c, float64(i))
		default:
			err = fmt.Errorf("%s: %w", t.Type, ErrRenderUnsupported)
		}
		if err != nil {
			return err
		}
	}

	width, height := fig.Layout.Width, fig.Layout.Height
	if width <= 0 {
		width = defaultWidthPx
	}
	if height <= 0 {
		height = defaultHeightPx
	}
	wt, err := p.WriterTo(pixels(width), pixels(height), "png")
	if err != nil {
		return fmt.Errorf("create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func pixels(px int) vg.Length {
	return vg.Length(px) * vg.Inch / pngDPI
}

func addXY(p *plot.Plot, t Trace, c color.Color) error {
	pts := make(plotter.XYs, 0, len(t.X))
	for i := range t.X {
		if i >= len(t.Y) {
			break
		}
		x, xok := numeric(t.X[i])
		y, yok := numeric(t.Y[i])
		if xok && yok {
			pts = append(pts, plotter.XY{X: x, Y: y})
		}
	}
	if len(pts) == 0 {
		return nil
	}

	mode := t.Mode
	if mode == "" {
		mode = "markers"
	}
	if strings.Contains(mode, "lines") {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line: %w", err)
		}
		line.Color = c
		line.Width = vg.Points(2)
		p.Add(line)
	}
	if strings.Contains(mode, "markers") {
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("scatter: %w", err)
		}
		sc.GlyphStyle.Color = c
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
	}
	return nil
}

func addBars(p *plot.Plot, t Trace, c color.Color) error {
	values := make(plotter.Values, 0, len(t.Y))
	names := make([]string, 0, len(t.X))
	for i := range t.Y {
		y, ok := numeric(t.Y[i])
		if !ok {
			y = 0
		}
		values = append(values, y)
		if i < len(t.X) {
			names = append(names, label(t.X[i]))
		}
	}
	if len(values) == 0 {
		return nil
	}
	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = c
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	if len(names) == len(values) {
		p.NominalX(names...)
	}
	return nil
}

func addBox(p *plot.Plot, t Trace, c color.Color, loc float64) error {
	values := make(plotter.Values, 0, len(t.Y))
	for _, v := range t.Y {
		if y, ok := numeric(v); ok {
			values = append(values, y)
		}
	}
	if len(values) == 0 {
		return nil
	}
	box, err := plotter.NewBoxPlot(vg.Points(40), loc, values)
	if err != nil {
		return fmt.Errorf("box plot: %w", err)
	}
	box.FillColor = c
	p.Add(box)
	return nil
}

// traceColor picks the marker or line color of a trace, falling back to the
// palette entry for its index.
func traceColor(t Trace, i int) color.Color {
	if t.Marker != nil {
		if s, ok := t.Marker.Color.(string); ok {
			if c, ok := parseHex(s); ok {
				return c
			}
		}
	}
	if t.Line != nil {
		if c, ok := parseHex(t.Line.Color); ok {
			return c
		}
	}
	c, _ := parseHex(plotlyColors[i%len(plotlyColors)])
	return c
}

func parseHex(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// numeric converts a figure value to float64. Year labels such as "2011"
// parse as numbers.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, finite(x)
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && finite(f)
	default:
		return 0, false
	}
}

func label(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
