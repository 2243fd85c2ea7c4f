// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/geostats/internal/cache"
	"github.com/tomtom215/geostats/internal/metrics"
	"github.com/tomtom215/geostats/internal/middleware"
	"github.com/tomtom215/geostats/internal/models"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// Health handles health check requests
//
// @Summary Get system health status
// @Description Database connectivity, spatial extension availability, stored dataset count and uptime
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse{data=models.HealthStatus} "Health status retrieved successfully"
// @Router /api/v1/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dbConnected := h.store != nil && h.store.Ping(ctx) == nil

	health := models.HealthStatus{
		Status:            "healthy",
		Version:           Version,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	metrics.AppUptime.Set(health.Uptime)

	if !dbConnected {
		health.Status = "degraded"
		NewResponseWriter(w, r).Success(health)
		return
	}

	health.SpatialAvailable = h.store.IsSpatialAvailable()
	if !health.SpatialAvailable {
		// Uploads cannot be read without ST_Read.
		health.Status = "degraded"
	}
	if n, err := h.store.CountDatasets(ctx); err == nil {
		health.DatasetCount = n
	}
	if ds, err := h.store.LatestDataset(ctx); err == nil {
		health.LatestDatasetID = ds.ID
	}

	NewResponseWriter(w, r).Success(health)
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
//
// @Summary Kubernetes liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse "Service is alive"
// @Router /api/v1/health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if the database answers and the spatial extension is loaded
//
// @Summary Kubernetes readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse "Service is ready"
// @Failure 503 {object} APIResponse "Service is not ready"
// @Router /api/v1/health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil
	spatial := dbConnected && h.store.IsSpatialAvailable()
	ready := dbConnected && spatial

	state := map[string]any{
		"database_connected": dbConnected,
		"spatial_available":  spatial,
		"ready_to_serve":     ready,
		"uptime":             time.Since(h.startTime).Seconds(),
	}
	if !ready {
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable,
			ErrCodeServiceUnavailable, "Service is not ready", state)
		return
	}
	NewResponseWriter(w, r).Success(state)
}

// PerformanceStats returns per-endpoint latency and cache statistics
//
// @Summary Get request performance statistics
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse "Endpoint and cache statistics"
// @Router /api/v1/health/performance [get]
func (h *Handler) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"endpoints": h.GetPerformanceStats(),
		"cache":     h.GetCacheStats(),
	})
}

// GetCacheStats returns cache performance statistics
func (h *Handler) GetCacheStats() cache.Stats {
	if h.cache != nil {
		return h.cache.GetStats()
	}
	return cache.Stats{}
}

// GetPerformanceStats returns performance monitoring statistics
func (h *Handler) GetPerformanceStats() []middleware.EndpointStats {
	if h.perfMon != nil {
		return h.perfMon.GetStats()
	}
	return nil
}
