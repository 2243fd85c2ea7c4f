// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

// Package archive unpacks uploaded shapefile archives and locates the
// shapefile inside them.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoShapefile is returned when an extracted archive contains no .shp file.
	ErrNoShapefile = errors.New("no shapefile found")

	// ErrUnsafePath is returned for archive entries that would land outside
	// the destination directory.
	ErrUnsafePath = errors.New("archive entry escapes destination")

	// ErrArchiveTooLarge is returned when an archive exceeds the configured
	// entry count or uncompressed size.
	ErrArchiveTooLarge = errors.New("archive exceeds size limits")
)

// Limits bounds what Extract will write to disk.
type Limits struct {
	MaxBytes   int64 // Total uncompressed bytes, 0 = unlimited
	MaxEntries int   // Number of entries, 0 = unlimited
}

// AllowedFile reports whether name has the .zip extension.
func AllowedFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// Extract unpacks the zip archive at zipPath into destDir and returns the
// paths of the files written.
func Extract(zipPath, destDir string, limits Limits) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if errors.Is(err, zip.ErrInsecurePath) {
		if r != nil {
			r.Close()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	if limits.MaxEntries > 0 && len(r.File) > limits.MaxEntries {
		return nil, fmt.Errorf("%w: %d entries (max %d)", ErrArchiveTooLarge, len(r.File), limits.MaxEntries)
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}

	var written []string
	var total int64
	for _, f := range r.File {
		name := filepath.FromSlash(f.Name)
		if !filepath.IsLocal(name) {
			return written, fmt.Errorf("%w: %q", ErrUnsafePath, f.Name)
		}
		target := filepath.Join(destDir, name)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o750); err != nil {
				return written, fmt.Errorf("create directory %s: %w", f.Name, err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue // symlinks, devices
		}

		remaining := int64(-1)
		if limits.MaxBytes > 0 {
			remaining = limits.MaxBytes - total
		}
		n, err := extractFile(f, target, remaining)
		total += n
		if err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

// extractFile copies one entry to target, writing at most remaining bytes
// when remaining is non-negative.
func extractFile(f *zip.File, target string, remaining int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", f.Name, err)
	}
	defer out.Close()

	var src io.Reader = rc
	if remaining >= 0 {
		// One byte past the budget is enough to detect an overflow.
		src = io.LimitReader(rc, remaining+1)
	}
	n, err := io.Copy(out, src)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", f.Name, err)
	}
	if remaining >= 0 && n > remaining {
		return n, fmt.Errorf("%w: uncompressed size limit reached at %s", ErrArchiveTooLarge, f.Name)
	}
	return n, out.Close()
}

// FindShapefile returns the first .shp file under dir, walking directories
// in lexical order.
func FindShapefile(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), "__MACOSX") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".shp") {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search %s: %w", dir, err)
	}
	if found == "" {
		return "", ErrNoShapefile
	}
	return found, nil
}

// ReadProjection returns the WKT from the .prj file next to shpPath, or ""
// when there is none.
func ReadProjection(shpPath string) (string, error) {
	base := strings.TrimSuffix(shpPath, filepath.Ext(shpPath))
	for _, ext := range []string{".prj", ".PRJ"} {
		data, err := os.ReadFile(base + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read projection: %w", err)
		}
		return strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff")), nil
	}
	return "", nil
}
