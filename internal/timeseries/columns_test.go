// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package timeseries

import (
	"fmt"
	"testing"
	"time"
)

func TestSplitSuffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		wantPrefix string
		wantSuffix int
		wantOK     bool
	}{
		{"PopDensity05", "PopDensity", 5, true},
		{"Pop123", "Pop1", 23, true},
		{"X99", "X", 99, true},
		{"SexR11", "SexR", 11, true},
		{"05", "", 0, false},
		{"PopDensity", "", 0, false},
		{"Pop5", "", 0, false},
		{"Pop05 ", "", 0, false},
		{"", "", 0, false},
	}

	for _, tt := range tests {
		prefix, suffix, ok := SplitSuffix(tt.name)
		if prefix != tt.wantPrefix || suffix != tt.wantSuffix || ok != tt.wantOK {
			t.Errorf("SplitSuffix(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.name, prefix, suffix, ok, tt.wantPrefix, tt.wantSuffix, tt.wantOK)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Pop-Density":   "popdensity",
		"popdensity":    "popdensity",
		"SC_ST":         "scst",
		"Child (0-6)":   "child 06",
		"Año.Censal":    "añocensal",
		"!\"#$%&'()*+,": "",
	}
	for in, want := range tests {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}

	if NormalizeKey("Pop-Density") != NormalizeKey("popdensity") {
		t.Error("Pop-Density and popdensity must normalize equal")
	}
}

func TestResolveYear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		suffix, pivot, want int
	}{
		{23, 24, 2023},
		{5, 24, 2005},
		{99, 24, 1999},
		{24, 24, 2024},
		{25, 24, 1925},
		{0, 0, 2000},
		{1, 0, 1901},
	}
	for _, tt := range tests {
		if got := ResolveYear(tt.suffix, tt.pivot); got != tt.want {
			t.Errorf("ResolveYear(%d, %d) = %d, want %d", tt.suffix, tt.pivot, got, tt.want)
		}
	}
}

func TestDefaultPivot(t *testing.T) {
	t.Parallel()

	if got := DefaultPivot(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); got != 24 {
		t.Errorf("DefaultPivot(2024) = %d, want 24", got)
	}
	if got := DefaultPivot(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)); got != 0 {
		t.Errorf("DefaultPivot(2100) = %d, want 0", got)
	}
}

func TestFamilies(t *testing.T) {
	t.Parallel()

	got := Families([]string{"id", "Pop05", "Lit01", "pop-12", "name", "Lit11", "geom"})
	want := "[{pop [Pop05 pop-12]} {lit [Lit01 Lit11]}]"
	if fmt.Sprint(got) != want {
		t.Errorf("Families() = %v, want %s", got, want)
	}
	if got := Families([]string{"id", "name"}); len(got) != 0 {
		t.Errorf("expected no families, got %v", got)
	}
}
