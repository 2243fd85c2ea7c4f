// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package services

import (
	"context"
	"errors"
	"fmt"
)

// EventRouter is the lifecycle of *events.Router.
type EventRouter interface {
	Run(ctx context.Context) error
}

// RouterFactory builds a router with its handlers registered. A Watermill
// router cannot be run again once closed, so every start needs a new one.
type RouterFactory func() (EventRouter, error)

// EventRouterService runs the dataset event router under supervision.
type EventRouterService struct {
	build RouterFactory
	name  string
}

// NewEventRouterService creates the service.
func NewEventRouterService(build RouterFactory) *EventRouterService {
	return &EventRouterService{build: build, name: "event-router"}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	router, err := s.build()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}

	err = router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("event router failed: %w", err)
	}
	return errors.New("event router stopped unexpectedly")
}

func (s *EventRouterService) String() string {
	return s.name
}
