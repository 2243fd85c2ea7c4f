// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
		wantType  string
	}{
		{"successful select", "SELECT", "datasets", nil, ""},
		{"catalog error", "AVG", "ds_test_catalog", errors.New("Catalog Error: Table with name ds_x does not exist!"), "catalog"},
		{"binder error", "AVG", "ds_test_binder", errors.New("Binder Error: No function matches avg(VARCHAR)"), "binder"},
		{"timeout", "ST_READ", "ds_test_timeout", fmt.Errorf("import: %w", context.DeadlineExceeded), "timeout"},
		{"unknown", "DELETE", "ds_test_other", errors.New("weird"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, 10*time.Millisecond, tt.err)
			if tt.wantType == "" {
				return
			}
			got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, tt.wantType))
			if got != 1 {
				t.Errorf("duckdb_query_errors_total{error_type=%q} = %v, want 1", tt.wantType, got)
			}
		})
	}
}

func TestRecordDatasetImport(t *testing.T) {
	before := testutil.ToFloat64(DatasetImports.WithLabelValues("rejected"))
	RecordDatasetImport("rejected", time.Second)
	RecordDatasetImport("success", 2*time.Second)

	if got := testutil.ToFloat64(DatasetImports.WithLabelValues("rejected")); got != before+1 {
		t.Errorf("dataset_imports_total{result=rejected} = %v, want %v", got, before+1)
	}
	if n := testutil.CollectAndCount(DatasetImportDuration); n != 1 {
		t.Errorf("expected one duration histogram, got %d", n)
	}
}

func TestRecordSeriesExtraction(t *testing.T) {
	for _, outcome := range []string{"success", "empty_match", "malformed_input"} {
		before := testutil.ToFloat64(SeriesExtractions.WithLabelValues(outcome))
		RecordSeriesExtraction(outcome)
		if got := testutil.ToFloat64(SeriesExtractions.WithLabelValues(outcome)); got != before+1 {
			t.Errorf("series_extractions_total{outcome=%q} = %v, want %v", outcome, got, before+1)
		}
	}
}

func TestRecordEventHandled(t *testing.T) {
	RecordEventHandled("datasets.test", nil)
	RecordEventHandled("datasets.test", errors.New("boom"))
	RecordEventHandled("datasets.test", errors.New("boom"))

	if got := testutil.ToFloat64(EventsHandled.WithLabelValues("datasets.test", "success")); got != 1 {
		t.Errorf("success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(EventsHandled.WithLabelValues("datasets.test", "error")); got != 2 {
		t.Errorf("error = %v, want 2", got)
	}
}

func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != start+2 {
		t.Errorf("active = %v, want %v", got, start+2)
	}
	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("active = %v, want %v", got, start)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			RecordAPIRequest("GET", "/api/v1/datasets/{id}/series", "200", time.Millisecond)
			RecordCacheHit("concurrent")
			RecordCacheMiss("concurrent")
			RecordPlot("scatter", "json")
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}(i)
	}
	wg.Wait()

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("concurrent")); got != 50 {
		t.Errorf("cache hits = %v, want 50", got)
	}
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		DBQueryDuration, DBQueryErrors,
		DatasetImports, DatasetImportDuration, DatasetsStored, DatasetsExpired,
		SeriesExtractions, PlotsGenerated,
		APIRequestsTotal, APIRequestDuration, APIActiveRequests, APIRateLimitHits,
		CacheHits, CacheMisses, CacheEvictions,
		EventsPublished, EventsHandled, ArtifactWrites,
		AppInfo, AppUptime,
	}
	for i, c := range collectors {
		// Registering again must fail because promauto already did it.
		err := prometheus.DefaultRegisterer.Register(c)
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			t.Errorf("collector %d: expected AlreadyRegisteredError, got %v", i, err)
		}
	}
}
