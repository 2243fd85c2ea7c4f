// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/tomtom215/geostats/docs" // Import generated swagger docs
	"github.com/tomtom215/geostats/internal/api"
	"github.com/tomtom215/geostats/internal/artifacts"
	"github.com/tomtom215/geostats/internal/cache"
	"github.com/tomtom215/geostats/internal/config"
	"github.com/tomtom215/geostats/internal/database"
	"github.com/tomtom215/geostats/internal/events"
	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/metrics"
	"github.com/tomtom215/geostats/internal/supervisor"
	"github.com/tomtom215/geostats/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("version", api.Version).
		Str("db_path", cfg.Database.Path).
		Str("static_dir", cfg.Storage.StaticDir).
		Int("series_pivot", cfg.Series.Pivot).
		Dur("retention", cfg.Storage.Retention).
		Msg("Starting GeoStats")

	metrics.AppInfo.WithLabelValues(api.Version, runtime.Version()).Set(1)

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("GeoStats stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	if !db.IsSpatialAvailable() {
		logging.Warn().Msg("Spatial extension unavailable, uploads will be rejected until it loads")
	}

	store, err := artifacts.New(cfg.Storage.StaticDir)
	if err != nil {
		return fmt.Errorf("initialize static directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Legacy routes resolve to the newest dataset across restarts.
	switch latest, err := db.LatestDataset(ctx); {
	case err == nil:
		store.SetLatest(latest.ID)
		logging.Info().Str("dataset_id", latest.ID).Msg("Restored most recent dataset")
	case !errors.Is(err, database.ErrNotFound):
		return fmt.Errorf("look up latest dataset: %w", err)
	}

	responseCache := cache.New("api", cfg.API.CacheTTL)
	defer responseCache.Close()

	wmLogger := logging.NewWatermillAdapter()
	bus := events.NewBus(&cfg.Events, wmLogger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	eventHandlers := events.NewHandlers(db, store, responseCache)
	buildRouter := func() (services.EventRouter, error) {
		r, err := events.NewRouter(events.RouterConfigFrom(&cfg.Events), bus.Publisher(), wmLogger)
		if err != nil {
			return nil, err
		}
		eventHandlers.Register(r, bus.Subscriber())
		return r, nil
	}

	handler := api.NewHandler(db, store, bus, responseCache, cfg)
	router := api.NewRouter(handler, &cfg.Security)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	if cfg.Storage.Retention > 0 {
		tree.AddDataService(services.NewRetentionJanitorService(db, bus, cfg.Storage.Retention, cfg.Storage.JanitorInterval))
		logging.Info().Dur("retention", cfg.Storage.Retention).Msg("Retention janitor added to supervisor tree")
	}
	tree.AddMessagingService(services.NewEventRouterService(buildRouter))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		treeErr = <-errCh
	case treeErr = <-errCh:
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", treeErr)
	}
	return nil
}
