// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

/*
Package supervisor runs GeoStats' long-lived services under a suture v4
supervisor tree.

The tree has three layers so a failure in one does not restart the others:

	RootSupervisor ("geostats")
	├── DataSupervisor ("data-layer")
	│   └── RetentionJanitorService (when storage.retention > 0)
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventRouterService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff; supervisor events are
logged through sutureslog into the zerolog-backed slog handler.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewEventRouterService(buildRouter))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

	if report, _ := tree.UnstoppedServiceReport(); len(report) > 0 {
	    logging.Warn().Int("count", len(report)).Msg("Services did not stop in time")
	}

Service wrappers live in the services subpackage.
*/
package supervisor
