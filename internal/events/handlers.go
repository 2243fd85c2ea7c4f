// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/geostats/internal/artifacts"
	"github.com/tomtom215/geostats/internal/cache"
	"github.com/tomtom215/geostats/internal/database"
	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/models"
)

// Summarizer computes dataset summaries.
type Summarizer interface {
	Summarize(ctx context.Context, id string) (*models.Summary, error)
}

// ArtifactStore is the part of artifacts.Store the handlers use.
type ArtifactStore interface {
	SetLatest(id string)
	WriteJSON(id string, a artifacts.Artifact, v any) (string, error)
	Remove(id string) error
}

// ResponseCache is the part of cache.Cache the handlers use.
type ResponseCache interface {
	Set(key string, value any)
	InvalidateDataset(datasetID string) int
}

// ColumnsArtifact is the body of response_data.json.
type ColumnsArtifact struct {
	Columns []string `json:"columns"`
}

// Handlers reacts to dataset lifecycle events.
type Handlers struct {
	summaries Summarizer
	artifacts ArtifactStore
	cache     ResponseCache
}

// NewHandlers creates the handler set. cache may be nil.
func NewHandlers(summaries Summarizer, store ArtifactStore, c ResponseCache) *Handlers {
	return &Handlers{summaries: summaries, artifacts: store, cache: c}
}

// Register subscribes the handlers on the router.
func (h *Handlers) Register(r *Router, sub message.Subscriber) {
	r.AddConsumerHandler("dataset-imported", TopicDatasetImported, sub, h.HandleImported)
	r.AddConsumerHandler("dataset-deleted", TopicDatasetDeleted, sub, h.HandleDeleted)
}

// SummaryCacheKey is the cache key of a dataset summary.
func SummaryCacheKey(id string) string {
	return cache.GenerateKey(id, "summary", nil)
}

// HandleImported writes the column listing and summary artifacts and warms
// the summary cache.
func (h *Handlers) HandleImported(msg *message.Message) error {
	ev, err := unmarshal[DatasetImported](msg.Payload)
	if err != nil {
		// Undecodable payloads never succeed on retry.
		logging.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed dataset.imported event")
		return nil
	}
	ctx := messageContext(msg, ev.ID)
	log := logging.Ctx(ctx)

	if ev.Latest {
		h.artifacts.SetLatest(ev.ID)
	}
	if _, err := h.artifacts.WriteJSON(ev.ID, artifacts.ResponseData, ColumnsArtifact{Columns: ev.Columns}); err != nil {
		return fmt.Errorf("write columns artifact: %w", err)
	}

	summary, err := h.summaries.Summarize(ctx, ev.ID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		log.Warn().Msg("Dataset deleted before its summary was computed")
		return nil
	case err != nil:
		return fmt.Errorf("summarize dataset: %w", err)
	}
	if _, err := h.artifacts.WriteJSON(ev.ID, artifacts.Summary, summary); err != nil {
		return fmt.Errorf("write summary artifact: %w", err)
	}
	if h.cache != nil {
		h.cache.Set(SummaryCacheKey(ev.ID), summary)
	}

	log.Info().Str("name", ev.Name).Int("columns", len(ev.Columns)).Msg("Dataset artifacts written")
	return nil
}

// HandleDeleted removes a dataset's artifacts and cache entries.
func (h *Handlers) HandleDeleted(msg *message.Message) error {
	ev, err := unmarshal[DatasetDeleted](msg.Payload)
	if err != nil {
		logging.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed dataset.deleted event")
		return nil
	}
	ctx := messageContext(msg, ev.ID)

	if err := h.artifacts.Remove(ev.ID); err != nil {
		if errors.Is(err, artifacts.ErrInvalidID) {
			return nil
		}
		return fmt.Errorf("remove artifacts: %w", err)
	}
	removed := 0
	if h.cache != nil {
		removed = h.cache.InvalidateDataset(ev.ID)
	}

	logging.Ctx(ctx).Info().
		Str("reason", ev.Reason).
		Int("cache_entries", removed).
		Msg("Dataset artifacts removed")
	return nil
}

// messageContext carries the publisher's correlation ID and the dataset ID
// into handler logs.
func messageContext(msg *message.Message, datasetID string) context.Context {
	ctx := msg.Context()
	if id := middleware.MessageCorrelationID(msg); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	return logging.ContextWithDatasetID(ctx, datasetID)
}
