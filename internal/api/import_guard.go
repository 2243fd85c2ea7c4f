// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/geostats/internal/config"
	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/metrics"
	"github.com/tomtom215/geostats/internal/models"
)

// ErrImportThrottled is returned when the import rate limit cannot admit
// a request before its context expires.
var ErrImportThrottled = errors.New("import rate limit exceeded")

const importBreakerName = "duckdb-import"

// importGuard paces shapefile imports across all clients and stops
// accepting them while DuckDB keeps failing to load files.
type importGuard struct {
	limiter *rate.Limiter // nil when unlimited
	cb      *gobreaker.CircuitBreaker[*models.Dataset]
}

// newImportGuard configures the guard:
//   - token bucket of cfg.ImportRate imports/s with cfg.ImportBurst burst
//   - breaker opens after 5 consecutive failed imports
//   - 30s open before a single half-open trial import
func newImportGuard(cfg *config.APIConfig) *importGuard {
	g := &importGuard{}
	if cfg.ImportRate > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(cfg.ImportRate), cfg.ImportBurst)
	}

	metrics.CircuitBreakerState.WithLabelValues(importBreakerName).Set(0)
	g.cb = gobreaker.NewCircuitBreaker[*models.Dataset](gobreaker.Settings{
		Name:        importBreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Abandoned uploads say nothing about DuckDB's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
	return g
}

// run waits for an import slot and executes fn through the breaker.
func (g *importGuard) run(ctx context.Context, fn func(context.Context) (*models.Dataset, error)) (*models.Dataset, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			metrics.CircuitBreakerRequests.WithLabelValues(importBreakerName, "throttled").Inc()
			return nil, fmt.Errorf("%w: %v", ErrImportThrottled, err)
		}
	}

	ds, err := g.cb.Execute(func() (*models.Dataset, error) {
		return fn(ctx)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(importBreakerName, "rejected").Inc()
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(importBreakerName, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(importBreakerName, "success").Inc()
	}
	return ds, err
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
