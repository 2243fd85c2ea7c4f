// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/geostats/internal/events"
	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/metrics"
)

// DatasetExpirer deletes datasets imported before a cutoff.
// Satisfied by *database.DB.
type DatasetExpirer interface {
	DeleteDatasetsOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

// DeletionPublisher announces removed datasets. Satisfied by *events.Bus.
type DeletionPublisher interface {
	PublishDeleted(ctx context.Context, event *events.DatasetDeleted) error
}

// RetentionJanitorService sweeps datasets older than the retention window.
// Each removal is published so the event router deletes the dataset's
// artifacts and cache entries.
type RetentionJanitorService struct {
	store     DatasetExpirer
	publisher DeletionPublisher
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	name      string
}

// NewRetentionJanitorService creates the janitor. interval defaults to an
// hour. A non-positive retention makes Serve idle until canceled.
func NewRetentionJanitorService(store DatasetExpirer, publisher DeletionPublisher, retention, interval time.Duration) *RetentionJanitorService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionJanitorService{
		store:     store,
		publisher: publisher,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		name:      "retention-janitor",
	}
}

// Serve implements suture.Service. It sweeps once at start, then on every
// interval. Sweep errors are logged and retried on the next tick rather
// than restarting the service.
func (s *RetentionJanitorService) Serve(ctx context.Context) error {
	if s.retention <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			logging.Warn().Err(err).Msg("Retention sweep failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep deletes expired datasets once and returns how many were removed.
func (s *RetentionJanitorService) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.retention)
	ids, err := s.store.DeleteDatasetsOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired datasets: %w", err)
	}

	for _, id := range ids {
		metrics.DatasetsExpired.Inc()
		metrics.DatasetsStored.Dec()

		evCtx := logging.ContextWithDatasetID(ctx, id)
		if err := s.publisher.PublishDeleted(evCtx, &events.DatasetDeleted{ID: id, Reason: events.ReasonRetention}); err != nil {
			// The catalog row is gone; stale artifacts are only disk usage.
			logging.Ctx(evCtx).Warn().Err(err).Msg("Failed to publish dataset expiry")
		}
	}

	if len(ids) > 0 {
		logging.Info().
			Int("count", len(ids)).
			Time("cutoff", cutoff).
			Msg("Expired datasets removed")
	}
	return len(ids), nil
}

func (s *RetentionJanitorService) String() string {
	return s.name
}
