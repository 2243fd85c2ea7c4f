// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// quoteIdent quotes a column or table name. Shapefile attribute names are
// user-controlled and may contain anything.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a string for use where DuckDB does not accept a
// parameter, such as table function arguments and ST_Transform CRS strings.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// tableNameFor returns the dataset table name for a dataset ID.
func tableNameFor(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid dataset id %q: %w", id, ErrNotFound)
	}
	return "ds_" + strings.ReplaceAll(u.String(), "-", ""), nil
}
