// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package charts

import "math"

// olsFit is an ordinary least squares line y = Slope*x + Intercept.
type olsFit struct {
	Slope     float64
	Intercept float64
	R2        float64
	N         int
}

// fitOLS fits a line to the pairs where both x and y are finite. It
// returns false with fewer than two such pairs or when x is constant.
func fitOLS(xs, ys []float64) (olsFit, bool) {
	var n int
	var sx, sy float64
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		sx += xs[i]
		sy += ys[i]
		n++
	}
	if n < 2 {
		return olsFit{}, false
	}
	mx, my := sx/float64(n), sy/float64(n)

	var sxx, sxy, syy float64
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		dx, dy := xs[i]-mx, ys[i]-my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return olsFit{}, false
	}

	slope := sxy / sxx
	fit := olsFit{Slope: slope, Intercept: my - slope*mx, N: n, R2: 1}
	if syy != 0 {
		fit.R2 = (sxy * sxy) / (sxx * syy)
	}
	return fit, true
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
