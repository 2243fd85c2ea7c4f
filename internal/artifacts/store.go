// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

// Package artifacts writes per-dataset static files served under /static.
//
// Each dataset owns <root>/<id>/. The most recently imported dataset is
// also mirrored at <root>/ so the legacy URLs (static/plot_output.json,
// static/map_data.geojson) keep resolving.
package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/metrics"
)

// Artifact is the file name of a static artifact.
type Artifact string

// Known artifacts.
const (
	MapData      Artifact = "map_data.geojson"
	PlotOutput   Artifact = "plot_output.json"
	Summary      Artifact = "summary.json"
	ResponseData Artifact = "response_data.json"
)

// All lists every artifact a dataset directory can hold.
var All = []Artifact{MapData, PlotOutput, Summary, ResponseData}

// URLPrefix is the path prefix artifacts are served under.
const URLPrefix = "static"

// ErrInvalidID is returned for dataset IDs that are not UUIDs.
var ErrInvalidID = errors.New("invalid dataset id")

// Store manages the static artifact tree.
type Store struct {
	root string

	mu     sync.RWMutex
	latest string
}

// New creates the root directory if needed.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create static dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the static root directory.
func (s *Store) Root() string { return s.root }

// SetLatest marks id as the dataset mirrored at the root. Later writes for
// id are mirrored; writes for other datasets are not.
func (s *Store) SetLatest(id string) {
	s.mu.Lock()
	s.latest = id
	s.mu.Unlock()
}

// Latest returns the mirrored dataset ID, empty if none.
func (s *Store) Latest() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Path returns the on-disk path of an artifact.
func (s *Store) Path(id string, a Artifact) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.root, id, string(a)), nil
}

// URLPath returns the relative URL of an artifact, e.g.
// static/<id>/plot_output.json.
func URLPath(id string, a Artifact) string {
	return path.Join(URLPrefix, id, string(a))
}

// LegacyURLPath returns the relative URL of the root mirror of a.
func LegacyURLPath(a Artifact) string {
	return path.Join(URLPrefix, string(a))
}

// Write stores data as artifact a of dataset id and returns its URL path.
func (s *Store) Write(id string, a Artifact, data []byte) (string, error) {
	dst, err := s.Path(id, a)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", fmt.Errorf("create dataset dir: %w", err)
	}
	if err := writeAtomic(dst, data); err != nil {
		return "", fmt.Errorf("write %s: %w", a, err)
	}
	metrics.ArtifactWrites.WithLabelValues(string(a)).Inc()

	if s.Latest() == id {
		if err := writeAtomic(filepath.Join(s.root, string(a)), data); err != nil {
			return "", fmt.Errorf("mirror %s: %w", a, err)
		}
	}
	return URLPath(id, a), nil
}

// WriteJSON encodes v and stores it as artifact a.
func (s *Store) WriteJSON(id string, a Artifact, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", a, err)
	}
	return s.Write(id, a, data)
}

// WritePlot stores figure JSON as plot_output.json. The file holds the
// figure as a JSON string, the shape existing frontends parse twice.
func (s *Store) WritePlot(id string, figure []byte) (string, error) {
	return s.WriteJSON(id, PlotOutput, string(figure))
}

// Read returns the contents of an artifact.
func (s *Store) Read(id string, a Artifact) ([]byte, error) {
	p, err := s.Path(id, a)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p) // #nosec G304 -- id is a validated UUID, a is a known artifact
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Exists reports whether an artifact has been written.
func (s *Store) Exists(id string, a Artifact) bool {
	p, err := s.Path(id, a)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Remove deletes every artifact of a dataset. If it was the mirrored
// dataset, the root mirrors are removed too.
func (s *Store) Remove(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.root, id)); err != nil {
		return fmt.Errorf("remove dataset artifacts: %w", err)
	}

	s.mu.Lock()
	mirrored := s.latest == id
	if mirrored {
		s.latest = ""
	}
	s.mu.Unlock()
	if !mirrored {
		return nil
	}

	var errs []error
	for _, a := range All {
		if err := os.Remove(filepath.Join(s.root, string(a))); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%q: %w", id, ErrInvalidID)
	}
	return nil
}

// writeAtomic writes data to a temp file in the destination directory and
// renames it over dst, so readers never observe a partial file.
func writeAtomic(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		closeAndRemove(tmp, tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		closeAndRemove(tmp, tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		removeTemp(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil { // #nosec G302 -- served publicly under /static
		removeTemp(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		removeTemp(tmpPath)
		return err
	}
	return nil
}

func closeAndRemove(f *os.File, p string) {
	if err := f.Close(); err != nil {
		logging.Warn().Err(err).Str("path", p).Msg("Failed to close temporary artifact")
	}
	removeTemp(p)
}

func removeTemp(p string) {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn().Err(err).Str("path", p).Msg("Failed to remove temporary artifact")
	}
}
