// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

// Package api provides the HTTP surface of Seertall: batch ingestion, the
// ranked aggregation endpoints behind the cache-aside executor, and health
// reporting. Routing uses Chi with ecosystem middleware.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seertall/seertall/internal/cache"
	"github.com/seertall/seertall/internal/config"
	"github.com/seertall/seertall/internal/database"
	"github.com/seertall/seertall/internal/ingest"
	"github.com/seertall/seertall/internal/models"
)

// maxIngestBodyBytes caps an upload at 64 MiB.
const maxIngestBodyBytes = 64 << 20

// Handler holds the dependencies of every HTTP endpoint.
type Handler struct {
	db       *database.DB
	pipeline *ingest.Pipeline
	executor *QueryExecutor
	cfg      *config.Config
}

// NewHandler creates the API handler. store may be nil when the query cache
// is disabled.
func NewHandler(db *database.DB, store cache.Store, cfg *config.Config) *Handler {
	return &Handler{
		db:       db,
		pipeline: ingest.NewPipeline(db),
		executor: NewQueryExecutor(store, cfg.Cache.TTL),
		cfg:      cfg,
	}
}

// Ingest handles POST /api/v1/ingest. The batch arrives as a CSV body or a
// multipart "file" field; it is committed atomically or rejected whole.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := h.ingestBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), err)
		return
	}
	defer body.Close()

	summary, err := h.pipeline.Ingest(r.Context(), io.LimitReader(body, maxIngestBodyBytes))
	if err != nil {
		h.respondIngestError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   summary,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// ingestBody selects the CSV source: the "file" part of a multipart upload,
// or the raw request body.
func (h *Handler) ingestBody(r *http.Request) (io.ReadCloser, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return r.Body, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	return file, nil
}

// respondIngestError maps pipeline and store failures onto the API error
// taxonomy: malformed batch -> 400, uniqueness conflict -> 409, anything
// else -> 500.
func (h *Handler) respondIngestError(w http.ResponseWriter, err error) {
	var rowErr *ingest.RowError

	switch {
	case errors.As(err, &rowErr):
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status:   "error",
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error: &models.APIError{
				Code:    "VALIDATION_ERROR",
				Message: rowErr.Error(),
				Details: map[string]interface{}{
					"line":  rowErr.Line,
					"field": rowErr.Field,
					"value": rowErr.Value,
				},
			},
		})
	case ingest.IsMalformed(err):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), err)
	case database.IsConflict(err):
		respondError(w, http.StatusConflict, "CONFLICT", err.Error(), err)
	default:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR",
			"Failed to commit ingestion batch", err)
	}
}

// PopularityByWeekday handles
// GET /api/v1/series/popularity-by-weekday?series_id&start_date&end_date.
// A series with no facts in range yields an empty list, not an error.
func (h *Handler) PopularityByWeekday(w http.ResponseWriter, r *http.Request) {
	seriesID, err := strconv.ParseInt(r.URL.Query().Get("series_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"series_id must be a positive integer", err)
		return
	}

	req := PopularityByWeekdayRequest{
		SeriesID:  seriesID,
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	if !validateRequest(w, &req) {
		return
	}

	dateRange, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), err)
		return
	}

	h.executor.Execute(w, r, "PopularityByWeekday", req, func(ctx context.Context) (interface{}, error) {
		return h.db.PopularityByWeekday(ctx, req.SeriesID, dateRange)
	})
}

// TopSeries handles GET /api/v1/series/top?start_date&end_date&limit&offset.
func (h *Handler) TopSeries(w http.ResponseWriter, r *http.Request) {
	req := TopSeriesRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		Limit:     getIntParam(r, "limit", h.cfg.API.DefaultLimit),
		Offset:    getIntParam(r, "offset", 0),
	}
	if !validateRequest(w, &req) {
		return
	}
	if req.Limit > h.cfg.API.MaxLimit {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"limit must be at most "+strconv.Itoa(h.cfg.API.MaxLimit), nil)
		return
	}

	dateRange, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), err)
		return
	}

	h.executor.Execute(w, r, "TopSeries", req, func(ctx context.Context) (interface{}, error) {
		return h.db.TopSeries(ctx, dateRange, req.Limit, req.Offset)
	})
}

// GetSeries handles GET /api/v1/series/{id}.
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"series id must be a positive integer", err)
		return
	}

	series, err := h.db.GetSeriesByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Series not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR",
			"Failed to fetch series", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     series,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.executor.Execute(w, r, "Stats", struct{}{}, func(ctx context.Context) (interface{}, error) {
		return h.db.GetStats(ctx)
	})
}

// HealthLive handles GET /api/v1/health/live: process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "alive"},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady handles GET /api/v1/health/ready: fact store is reachable.
// The cache store is deliberately not part of readiness; the service serves
// correct responses without it.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR",
			"Fact store not reachable", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "ready"},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
