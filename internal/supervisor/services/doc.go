// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

// Package services adapts GeoStats components to suture.Service.
//
// Each wrapper turns a component's own lifecycle (ListenAndServe/Shutdown,
// a blocking Run, a periodic sweep) into Serve(ctx) and returns ctx.Err()
// once the supervisor asks it to stop:
//
//   - HTTPServerService: the API server, drained with Shutdown on stop
//   - EventRouterService: the dataset event router, rebuilt on every start
//   - RetentionJanitorService: deletes datasets older than the retention
package services
