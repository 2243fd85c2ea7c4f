// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

/*
Package validation wraps go-playground/validator for HTTP request structs.

# Custom Tags

  - plottype: one of the chart types in charts.PlotTypes
  - column: a printable attribute name of at most 255 bytes

Everything else uses the built-in tags (required, oneof, uuid, min, max).

# Field Names

Errors name fields by their json tag, falling back to the form tag and then
the Go field name, so clients see "feature1 is required" rather than
"Feature1 is required".

# Error Format

A single failure becomes:

	{"code": "VALIDATION_ERROR", "message": "plot_type must be one of: ...",
	 "details": {"field": "plot_type", "tag": "plottype", "value": "violin"}}

Several failures are joined into one message with a details.fields list.
*/
package validation
