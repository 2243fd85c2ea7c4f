// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/geostats/internal/archive"
	"github.com/tomtom215/geostats/internal/database"
	"github.com/tomtom215/geostats/internal/events"
	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/metrics"
	"github.com/tomtom215/geostats/internal/models"
)

// multipartMemory is how much of an upload ParseMultipartForm keeps in
// memory before spilling to a temp file.
const multipartMemory = 8 << 20

// UploadDataset imports a zipped shapefile
//
// @Summary Upload a shapefile archive
// @Description Imports a .zip holding a shapefile (.shp, .shx, .dbf, optional .prj) as a new dataset
// @Tags Datasets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Zipped shapefile"
// @Success 201 {object} APIResponse{data=models.Dataset} "Dataset imported"
// @Failure 400 {object} APIResponse "Missing file, wrong type or no shapefile in archive"
// @Failure 413 {object} APIResponse "Upload exceeds size limits"
// @Failure 503 {object} APIResponse "Spatial extension unavailable"
// @Router /api/v1/datasets [post]
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.importUpload(w, r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(ds)
}

// ListDatasets returns every dataset, newest first
//
// @Summary List datasets
// @Tags Datasets
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.Dataset}
// @Router /api/v1/datasets [get]
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.store.ListDatasets(r.Context())
	if err != nil {
		NewResponseWriter(w, r).DatabaseError(err)
		return
	}
	NewResponseWriter(w, r).List(datasets, len(datasets))
}

// GetDataset returns dataset metadata
//
// @Summary Get dataset
// @Tags Datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} APIResponse{data=models.Dataset}
// @Failure 404 {object} APIResponse "Dataset not found"
// @Router /api/v1/datasets/{id} [get]
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.GetDataset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(ds)
}

// DeleteDataset drops a dataset and its artifacts
//
// @Summary Delete dataset
// @Tags Datasets
// @Param id path string true "Dataset ID"
// @Success 204 "Deleted"
// @Failure 404 {object} APIResponse "Dataset not found"
// @Router /api/v1/datasets/{id} [delete]
func (h *Handler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := logging.ContextWithDatasetID(r.Context(), id)

	if err := h.store.DeleteDataset(ctx, id); err != nil {
		respondErr(w, r, err)
		return
	}
	metrics.DatasetsStored.Dec()

	if err := h.events.PublishDeleted(ctx, &events.DatasetDeleted{ID: id, Reason: events.ReasonRequest}); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to publish dataset deletion")
	}
	logging.Ctx(ctx).Info().Msg("Dataset deleted")
	NewResponseWriter(w, r).NoContent()
}

// importUpload reads the multipart "file" part and imports it.
func (h *Handler) importUpload(w http.ResponseWriter, r *http.Request) (*models.Dataset, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Storage.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrFileRequired, err)
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileRequired, err)
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) {
		return nil, ErrFileRequired
	}
	if !archive.AllowedFile(name) {
		return nil, fmt.Errorf("%w: %q", ErrFileType, name)
	}

	start := time.Now()
	ds, err := h.importArchive(r.Context(), file, name)
	metrics.RecordDatasetImport(importResult(err), time.Since(start))
	return ds, err
}

// importArchive saves and unpacks the archive in a scratch directory,
// loads its shapefile and publishes the import. The scratch directory is
// removed once DuckDB holds the data.
func (h *Handler) importArchive(ctx context.Context, src io.Reader, name string) (*models.Dataset, error) {
	id := uuid.NewString()
	ctx = logging.ContextWithDatasetID(ctx, id)
	log := logging.Ctx(ctx)

	workDir := filepath.Join(h.config.Storage.UploadDir, id)
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn().Err(err).Str("dir", workDir).Msg("Failed to remove upload directory")
		}
	}()

	zipPath := filepath.Join(workDir, "upload.zip")
	if err := saveUpload(zipPath, src); err != nil {
		return nil, err
	}

	extractDir := filepath.Join(workDir, "extracted")
	limits := archive.Limits{
		MaxBytes:   h.config.Storage.MaxExtractedBytes,
		MaxEntries: h.config.Storage.MaxArchiveEntries,
	}
	if _, err := archive.Extract(zipPath, extractDir, limits); err != nil {
		return nil, err
	}
	shp, err := archive.FindShapefile(extractDir)
	if err != nil {
		return nil, err
	}
	crs, err := archive.ReadProjection(shp)
	if err != nil {
		return nil, err
	}

	ds, err := h.imports.run(ctx, func(ctx context.Context) (*models.Dataset, error) {
		return h.store.ImportShapefile(ctx, database.ImportRequest{
			ID:            id,
			Name:          name,
			ShapefilePath: shp,
			SourceCRS:     crs,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.DatasetsStored.Inc()
	log.Info().
		Str("name", name).
		Str("shapefile", ds.ShapefileName).
		Int64("features", ds.FeatureCount).
		Msg("Dataset imported")

	err = h.events.PublishImported(ctx, &events.DatasetImported{
		ID:         ds.ID,
		Name:       ds.Name,
		Columns:    ds.AttributeNames(),
		ImportedAt: ds.CreatedAt,
		Latest:     true,
	})
	if err != nil {
		// The dataset is stored; artifacts are rebuilt on demand.
		log.Error().Err(err).Msg("Failed to publish dataset import")
	}
	return ds, nil
}

func saveUpload(dst string, src io.Reader) error {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return fmt.Errorf("save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	return nil
}

// importResult is the dataset_imports_total label of an import outcome.
func importResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, archive.ErrNoShapefile):
		return "no_shapefile"
	case classify(err).status < http.StatusInternalServerError:
		return "rejected"
	default:
		return "error"
	}
}
