// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package artifacts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "static"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestWriteAndRead(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	id := uuid.NewString()

	url, err := s.Write(id, MapData, []byte(`{"type":"FeatureCollection","features":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if url != "static/"+id+"/map_data.geojson" {
		t.Errorf("url = %q", url)
	}
	data, err := s.Read(id, MapData)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"FeatureCollection","features":[]}` {
		t.Errorf("data = %s", data)
	}
	if !s.Exists(id, MapData) || s.Exists(id, Summary) {
		t.Error("Exists mismatch")
	}
	if _, err := os.Stat(filepath.Join(s.Root(), string(MapData))); !errors.Is(err, os.ErrNotExist) {
		t.Error("non-latest dataset should not be mirrored")
	}

	matches, _ := filepath.Glob(filepath.Join(s.Root(), id, "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestLatestIsMirrored(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	id := uuid.NewString()
	s.SetLatest(id)

	if _, err := s.WriteJSON(id, ResponseData, map[string][]string{"columns": {"a", "b"}}); err != nil {
		t.Fatal(err)
	}
	mirror, err := os.ReadFile(filepath.Join(s.Root(), string(ResponseData)))
	if err != nil {
		t.Fatal(err)
	}
	if string(mirror) != `{"columns":["a","b"]}` {
		t.Errorf("mirror = %s", mirror)
	}
	if LegacyURLPath(ResponseData) != "static/response_data.json" {
		t.Errorf("legacy url = %q", LegacyURLPath(ResponseData))
	}
}

func TestWritePlotEncodesString(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	id := uuid.NewString()
	figure := []byte(`{"data":[],"layout":{"title":{"text":"Bar Plot"}}}`)

	if _, err := s.WritePlot(id, figure); err != nil {
		t.Fatal(err)
	}
	raw, err := s.Read(id, PlotOutput)
	if err != nil {
		t.Fatal(err)
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		t.Fatalf("plot_output.json should hold a JSON string: %v", err)
	}
	if inner != string(figure) {
		t.Errorf("inner = %s", inner)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	keep, gone := uuid.NewString(), uuid.NewString()
	s.SetLatest(gone)
	for _, id := range []string{keep, gone} {
		if _, err := s.Write(id, Summary, []byte(`{}`)); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.Remove(gone); err != nil {
		t.Fatal(err)
	}
	if s.Exists(gone, Summary) {
		t.Error("removed dataset still has artifacts")
	}
	if _, err := os.Stat(filepath.Join(s.Root(), string(Summary))); !errors.Is(err, os.ErrNotExist) {
		t.Error("root mirror should be removed with the latest dataset")
	}
	if s.Latest() != "" {
		t.Errorf("latest = %q", s.Latest())
	}
	if !s.Exists(keep, Summary) {
		t.Error("other dataset lost its artifacts")
	}
	if err := s.Remove(uuid.NewString()); err != nil {
		t.Errorf("removing an unknown dataset: %v", err)
	}
}

func TestInvalidID(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	if _, err := s.Write("../../etc", Summary, nil); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Write error = %v", err)
	}
	if err := s.Remove(".."); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Remove error = %v", err)
	}
}
