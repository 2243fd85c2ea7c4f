// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

/*
Package cache provides a thread-safe in-memory TTL cache for API responses.

Datasets are immutable once imported, so summaries, column listings, series
and figures derived from one can be reused until the dataset is deleted.
Keys are scoped per dataset:

	key := cache.GenerateKey(datasetID, "series", feature)
	if v, ok := c.Get(key); ok {
	    return v.(*models.SeriesResponse), nil
	}
	resp := compute()
	c.Set(key, resp)

Deleting a dataset calls InvalidateDataset, which drops every key generated
for it. Expired entries are removed lazily on Get and by a background sweep
that stops on Close.

Hits, misses and evictions are exported as cache_*_total Prometheus
counters labeled with the cache name.
*/
package cache
