// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package models

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	SpatialAvailable  bool    `json:"spatial_available"`
	DatasetCount      int64   `json:"dataset_count"`
	LatestDatasetID   string  `json:"latest_dataset_id,omitempty"`
	Uptime            float64 `json:"uptime"`
}
