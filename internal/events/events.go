// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

// Package events carries dataset lifecycle events over an in-process
// Watermill pub/sub.
//
// Imports and deletions are published by the API and the retention janitor.
// Router handlers react by writing static artifacts, warming the response
// cache and removing what a deleted dataset left behind.
package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Topics.
const (
	TopicDatasetImported = "datasets.imported"
	TopicDatasetDeleted  = "datasets.deleted"

	// TopicPoison receives messages whose handler failed after all retries.
	TopicPoison = "datasets.poison"
)

// ErrInvalidEvent is returned when an event is missing required fields.
var ErrInvalidEvent = errors.New("invalid event")

// DatasetImported is published after a shapefile has been stored.
type DatasetImported struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Columns    []string  `json:"columns"`
	ImportedAt time.Time `json:"imported_at"`
	// Latest marks the import as the dataset legacy routes resolve to.
	Latest bool `json:"latest"`
}

// Validate checks required fields.
func (e *DatasetImported) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: dataset id is required", ErrInvalidEvent)
	}
	return nil
}

// DatasetDeleted is published after a dataset has been removed from the
// catalog, by request or by retention.
type DatasetDeleted struct {
	ID     string `json:"id"`
	Reason string `json:"reason"` // "request" or "retention"
}

// Validate checks required fields.
func (e *DatasetDeleted) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: dataset id is required", ErrInvalidEvent)
	}
	return nil
}

// Deletion reasons.
const (
	ReasonRequest   = "request"
	ReasonRetention = "retention"
)

type validator interface {
	Validate() error
}

// marshal validates and encodes an event payload.
func marshal(event validator) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// unmarshal decodes and validates an event payload.
func unmarshal[T any, P interface {
	*T
	validator
}](data []byte) (*T, error) {
	var event T
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := P(&event).Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}
