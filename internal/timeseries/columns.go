// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package timeseries

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// yearSuffixPattern matches "<base><2 digits>". The base is greedy, so
// "Pop123" splits as "Pop1" + "23".
var yearSuffixPattern = regexp.MustCompile(`^(.+)(\d{2})$`)

// asciiPunctuation is the set removed when normalizing feature keys.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// SplitSuffix splits a year-suffixed name into its base and two-digit suffix.
// ok is false when name carries no trailing two-digit suffix.
func SplitSuffix(name string) (prefix string, suffix int, ok bool) {
	m := yearSuffixPattern.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// NormalizeKey strips ASCII punctuation and lower-cases s, so that
// "Pop-Density" and "popdensity" compare equal.
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune(asciiPunctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// ResolveYear expands a two-digit suffix to a four-digit year. Suffixes at
// or below pivot land in the 2000s, the rest in the 1900s.
func ResolveYear(suffix, pivot int) int {
	if suffix <= pivot {
		return 2000 + suffix
	}
	return 1900 + suffix
}

// DefaultPivot returns now's year modulo 100.
func DefaultPivot(now time.Time) int {
	return now.Year() % 100
}

// Family groups the year-suffixed columns that share a normalized key.
type Family struct {
	Key     string   `json:"key"`
	Columns []string `json:"columns"`
}

// Families groups the year-suffixed names in columns by normalized key,
// in order of first appearance. Names without a suffix are ignored.
func Families(columns []string) []Family {
	index := make(map[string]int)
	var out []Family
	for _, col := range columns {
		prefix, _, ok := SplitSuffix(col)
		if !ok {
			continue
		}
		key := NormalizeKey(prefix)
		i, seen := index[key]
		if !seen {
			i = len(out)
			index[key] = i
			out = append(out, Family{Key: key})
		}
		out[i].Columns = append(out[i].Columns, col)
	}
	return out
}
