// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/geostats/internal/artifacts"
	"github.com/tomtom215/geostats/internal/config"
	"github.com/tomtom215/geostats/internal/events"
	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/models"
)

type runFunc func(ctx context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

func TestEventRouterService_Errors(t *testing.T) {
	buildErr := errors.New("bad middleware")
	svc := NewEventRouterService(func() (EventRouter, error) { return nil, buildErr })
	if err := svc.Serve(context.Background()); !errors.Is(err, buildErr) {
		t.Errorf("build failure: %v", err)
	}

	runErr := errors.New("subscribe failed")
	svc = NewEventRouterService(func() (EventRouter, error) {
		return runFunc(func(context.Context) error { return runErr }), nil
	})
	if err := svc.Serve(context.Background()); !errors.Is(err, runErr) {
		t.Errorf("run failure: %v", err)
	}

	svc = NewEventRouterService(func() (EventRouter, error) {
		return runFunc(func(context.Context) error { return nil }), nil
	})
	if err := svc.Serve(context.Background()); err == nil {
		t.Error("early return should be an error")
	}
}

func TestEventRouterService_BuildsPerStart(t *testing.T) {
	var builds atomic.Int32
	svc := NewEventRouterService(func() (EventRouter, error) {
		builds.Add(1)
		return runFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}), nil
	})

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(ctx, svc)
		cancel()
		if err := awaitErr(t, errCh); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v", err)
		}
	}
	if builds.Load() != 2 {
		t.Errorf("builds = %d, want 2", builds.Load())
	}
}

type staticSummarizer struct{}

func (staticSummarizer) Summarize(context.Context, string) (*models.Summary, error) {
	return &models.Summary{NumFeatures: 1}, nil
}

func TestEventRouterService_RunsWatermillRouter(t *testing.T) {
	cfg := &config.EventsConfig{
		RetryCount:           1,
		RetryInitialInterval: time.Millisecond,
		CloseTimeout:         time.Second,
		BufferSize:           8,
	}
	logger := logging.NewWatermillAdapter()
	bus := events.NewBus(cfg, logger)
	defer func() { _ = bus.Close() }()

	store, err := artifacts.New(filepath.Join(t.TempDir(), "static"))
	if err != nil {
		t.Fatal(err)
	}

	var current atomic.Pointer[events.Router]
	svc := NewEventRouterService(func() (EventRouter, error) {
		r, err := events.NewRouter(events.RouterConfigFrom(cfg), bus.Publisher(), logger)
		if err != nil {
			return nil, err
		}
		events.NewHandlers(staticSummarizer{}, store, nil).Register(r, bus.Subscriber())
		current.Store(r)
		return r, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(ctx, svc)

	deadline := time.Now().Add(time.Second)
	for current.Load() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case <-current.Load().Running():
	case <-time.After(2 * time.Second):
		t.Fatal("router did not start")
	}

	id := "6f0f9ab4-0000-4000-8000-000000000001"
	if err := bus.PublishImported(context.Background(), &events.DatasetImported{ID: id, Columns: []string{"Area"}}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !store.Exists(id, artifacts.Summary) {
		t.Error("summary artifact not written by handler")
	}

	cancel()
	if err := awaitErr(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v", err)
	}
}
