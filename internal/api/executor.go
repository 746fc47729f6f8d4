// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/seertall/seertall/internal/cache"
	"github.com/seertall/seertall/internal/database"
	"github.com/seertall/seertall/internal/logging"
	"github.com/seertall/seertall/internal/metrics"
	"github.com/seertall/seertall/internal/models"
)

// QueryFunc executes the underlying aggregation query on a cache miss. The
// result must be JSON-serializable; it is what gets cached and returned in
// the APIResponse wrapper.
type QueryFunc func(ctx context.Context) (interface{}, error)

// cacheLookup is the breaker-protected result of a store read.
type cacheLookup struct {
	value string
	found bool
}

// QueryExecutor implements the cache-aside flow shared by every aggregation
// endpoint:
//
//  1. Derive a deterministic key from the operation name and typed parameters.
//  2. Probe the cache store; a live, well-formed entry is returned as-is with
//     Cached metadata and zero query time.
//  3. On a miss, run the query, serialize the result, and store it with the
//     fixed TTL.
//
// The cache is strictly advisory. A corrupt entry counts as a miss; a store
// failure (read or write) is logged and bypassed, never surfaced to the
// client. A circuit breaker wraps the store so a dead cache backend costs one
// failed call per probe window instead of a timeout per request.
type QueryExecutor struct {
	store   cache.Store
	breaker *gobreaker.CircuitBreaker[cacheLookup]
	ttl     time.Duration
}

// NewQueryExecutor creates a cache-aside executor over the given store. A nil
// store disables caching; every query then computes directly.
func NewQueryExecutor(store cache.Store, ttl time.Duration) *QueryExecutor {
	breaker := gobreaker.NewCircuitBreaker[cacheLookup](gobreaker.Settings{
		Name:    "query-cache",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Cache circuit breaker state change")
		},
	})

	return &QueryExecutor{store: store, breaker: breaker, ttl: ttl}
}

// Execute runs one aggregation request through the cache-aside flow and
// writes the HTTP response.
func (e *QueryExecutor) Execute(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	params interface{},
	queryFunc QueryFunc,
) {
	start := time.Now()
	key := cache.Key(operation, params)

	if payload, ok := e.lookup(r.Context(), key); ok {
		respondJSON(w, http.StatusOK, &models.APIResponse{
			Status: "success",
			Data:   json.RawMessage(payload),
			Metadata: models.Metadata{
				Timestamp:   time.Now(),
				QueryTimeMS: 0,
				Cached:      true,
			},
		})
		return
	}

	data, err := queryFunc(r.Context())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR",
			"Failed to execute query: "+operation, err)
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR",
			"Failed to serialize query result", err)
		return
	}

	e.save(r.Context(), key, string(payload))

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   json.RawMessage(payload),
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// lookup probes the cache store through the breaker. It returns the cached
// payload and true only for a live, syntactically valid entry; everything
// else, including store failure, degrades to a miss.
func (e *QueryExecutor) lookup(ctx context.Context, key string) (string, bool) {
	if e.store == nil {
		return "", false
	}

	result, err := e.breaker.Execute(func() (cacheLookup, error) {
		value, found, err := e.store.Get(ctx, key)
		return cacheLookup{value: value, found: found}, err
	})
	if err != nil {
		metrics.QueryCacheBypass.Inc()
		logging.Debug().Err(err).Str("key", key).Msg("Cache read bypassed")
		return "", false
	}
	if !result.found {
		metrics.QueryCacheMisses.Inc()
		return "", false
	}
	if !json.Valid([]byte(result.value)) {
		// Corrupt entry: treat as a miss and let the fresh result overwrite it
		metrics.QueryCacheMisses.Inc()
		logging.Warn().Str("key", key).Msg("Discarding corrupt cache entry")
		return "", false
	}

	metrics.QueryCacheHits.Inc()
	return result.value, true
}

// save writes a freshly computed payload through the breaker. Failures are
// logged and swallowed; the response already has the data.
func (e *QueryExecutor) save(ctx context.Context, key, payload string) {
	if e.store == nil {
		return
	}

	_, err := e.breaker.Execute(func() (cacheLookup, error) {
		return cacheLookup{}, e.store.Set(ctx, key, payload, e.ttl)
	})
	if err != nil {
		metrics.QueryCacheBypass.Inc()
		logging.Debug().Err(err).Str("key", key).Msg("Cache write bypassed")
	}
}
