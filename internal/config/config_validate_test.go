// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package config

import (
	"testing"
	"time"
)

func TestValidateStorage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty upload dir", func(c *Config) { c.Storage.UploadDir = "" }, true},
		{"empty static dir", func(c *Config) { c.Storage.StaticDir = "" }, true},
		{"no archive entries", func(c *Config) { c.Storage.MaxArchiveEntries = 0 }, true},
		{"negative retention", func(c *Config) { c.Storage.Retention = -time.Hour }, true},
		{"retention with tiny janitor", func(c *Config) {
			c.Storage.Retention = time.Hour
			c.Storage.JanitorInterval = time.Millisecond
		}, true},
		{"retention with janitor", func(c *Config) { c.Storage.Retention = 24 * time.Hour }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSeriesPivot(t *testing.T) {
	t.Parallel()

	for _, pivot := range []int{-1, 0, 24, 99} {
		cfg := defaultConfig()
		cfg.Series.Pivot = pivot
		if err := cfg.Validate(); err != nil {
			t.Errorf("pivot %d: unexpected error %v", pivot, err)
		}
	}
	for _, pivot := range []int{-2, 100} {
		cfg := defaultConfig()
		cfg.Series.Pivot = pivot
		if err := cfg.Validate(); err == nil {
			t.Errorf("pivot %d: expected error", pivot)
		}
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.ShouldWarnAboutCORS() {
		t.Error("development wildcard should not warn")
	}
	cfg.Server.Environment = "production"
	if !cfg.IsProduction() || !cfg.ShouldWarnAboutCORS() {
		t.Error("production wildcard should warn")
	}
	cfg.Security.CORSOrigins = []string{"https://geo.example.com"}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("explicit origin should not warn")
	}
}
