// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

// Package metrics defines the Prometheus instrumentation for Seertall:
// ingestion throughput, fact store query performance, query cache
// efficiency, and HTTP endpoint latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics
	IngestBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seertall_ingest_batches_total",
			Help: "Total number of ingestion batches by outcome",
		},
		[]string{"outcome"}, // "committed", "validation_error", "conflict", "store_error"
	)

	IngestRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seertall_ingest_rows_total",
			Help: "Total number of day-view rows durably committed",
		},
	)

	SeriesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seertall_series_created_total",
			Help: "Total number of series rows created by ingestion",
		},
	)

	// Fact store metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seertall_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seertall_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// Query cache metrics
	QueryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seertall_query_cache_hits_total",
			Help: "Total number of query cache hits",
		},
	)

	QueryCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seertall_query_cache_misses_total",
			Help: "Total number of query cache misses (absent, expired, or corrupt)",
		},
	)

	QueryCacheBypass = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seertall_query_cache_bypass_total",
			Help: "Total number of queries that bypassed an unavailable cache store",
		},
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seertall_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seertall_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)
