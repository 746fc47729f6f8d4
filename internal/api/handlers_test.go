// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/seertall/seertall/internal/config"
	"github.com/seertall/seertall/internal/database"
	"github.com/seertall/seertall/internal/models"
)

func setupTestServer(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8294, Timeout: 30 * time.Second},
		Database: config.DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "500MB",
			Threads:   2,
		},
		Cache: config.CacheConfig{Enabled: true, TTL: time.Minute},
		API:   config.APIConfig{DefaultLimit: 5, MaxLimit: 10},
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	handler := NewHandler(db, newFakeStore(), cfg)
	return NewRouter(handler).Setup()
}

func doRequest(t *testing.T, server http.Handler, req *http.Request) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var envelope testEnvelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, envelope
}

func postCSV(t *testing.T, server http.Handler, csv string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	return doRequest(t, server, req)
}

const sampleBatch = `seriesId,date,screen,views
archipelago,20240101,desktop,10
archipelago,20240108,desktop,5
archipelago,20240102,mobile,3
meridian,20240101,tablet,40
`

func TestIngestEndpoint(t *testing.T) {
	server := setupTestServer(t)

	rec, envelope := postCSV(t, server, sampleBatch)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var summary models.IngestSummary
	if err := json.Unmarshal(envelope.Data, &summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.RowsIngested != 4 {
		t.Errorf("RowsIngested = %d, want 4", summary.RowsIngested)
	}
	if summary.SeriesCreated != 2 {
		t.Errorf("SeriesCreated = %d, want 2", summary.SeriesCreated)
	}
}

func TestIngestEndpointMultipart(t *testing.T) {
	server := setupTestServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "batch.csv")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := part.Write([]byte(sampleBatch)); err != nil {
		t.Fatalf("Failed to write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec, _ := doRequest(t, server, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestIngestEndpointRejectsMalformedRow(t *testing.T) {
	server := setupTestServer(t)

	rec, envelope := postCSV(t, server, "seriesId,date,screen,views\narchipelago,20240101,holodeck,10\n")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", envelope.Error)
	}
	if envelope.Error.Details["field"] != "screen" {
		t.Errorf("details field = %v, want screen", envelope.Error.Details["field"])
	}
}

func TestIngestEndpointRejectsDuplicateBatch(t *testing.T) {
	server := setupTestServer(t)

	if rec, _ := postCSV(t, server, sampleBatch); rec.Code != http.StatusCreated {
		t.Fatalf("seed batch status = %d, want 201", rec.Code)
	}

	rec, envelope := postCSV(t, server, sampleBatch)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != "CONFLICT" {
		t.Errorf("error = %+v, want CONFLICT", envelope.Error)
	}
}

func TestPopularityByWeekdayEndpoint(t *testing.T) {
	server := setupTestServer(t)

	if rec, _ := postCSV(t, server, sampleBatch); rec.Code != http.StatusCreated {
		t.Fatalf("seed batch failed")
	}

	// archipelago is the first series the batch creates
	req := httptest.NewRequest(http.MethodGet, "/api/v1/series/popularity-by-weekday?series_id=1", nil)
	rec, envelope := doRequest(t, server, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var results []models.WeekdayPopularity
	if err := json.Unmarshal(envelope.Data, &results); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(results), results)
	}
	if results[0].Weekday != "monday" || results[0].ViewCount != 15 || results[0].Rank != 0 {
		t.Errorf("row 0 = %+v, want monday/15/rank 0", results[0])
	}
	if results[1].Weekday != "tuesday" || results[1].ViewCount != 3 || results[1].Rank != 1 {
		t.Errorf("row 1 = %+v, want tuesday/3/rank 1", results[1])
	}
}

func TestPopularityByWeekdayEndpointValidation(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		name string
		url  string
	}{
		{"missing series_id", "/api/v1/series/popularity-by-weekday"},
		{"non-numeric series_id", "/api/v1/series/popularity-by-weekday?series_id=abc"},
		{"negative series_id", "/api/v1/series/popularity-by-weekday?series_id=-1"},
		{"bad start_date", "/api/v1/series/popularity-by-weekday?series_id=1&start_date=2024-01-01"},
		{"inverted range", "/api/v1/series/popularity-by-weekday?series_id=1&start_date=20240201&end_date=20240101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec, envelope := doRequest(t, server, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v, want VALIDATION_ERROR", envelope.Error)
			}
		})
	}
}

func TestTopSeriesEndpoint(t *testing.T) {
	server := setupTestServer(t)

	if rec, _ := postCSV(t, server, sampleBatch); rec.Code != http.StatusCreated {
		t.Fatalf("seed batch failed")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/series/top?limit=1&offset=1", nil)
	rec, envelope := doRequest(t, server, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var results []models.TopSeriesEntry
	if err := json.Unmarshal(envelope.Data, &results); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	// meridian (40) leads archipelago (18); offset 1 selects archipelago
	if len(results) != 1 {
		t.Fatalf("got %d rows, want 1", len(results))
	}
	if results[0].Name != "archipelago" || results[0].ViewCount != 18 {
		t.Errorf("row = %+v, want archipelago/18", results[0])
	}
	if results[0].Rank != 0 {
		t.Errorf("Rank = %d, want 0 (rank restarts per page)", results[0].Rank)
	}
}

func TestTopSeriesEndpointLimitValidation(t *testing.T) {
	server := setupTestServer(t)

	for _, url := range []string{
		"/api/v1/series/top?limit=11",
		"/api/v1/series/top?limit=0",
		"/api/v1/series/top?offset=-1",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec, envelope := doRequest(t, server, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, rec.Code)
			continue
		}
		if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("%s: error = %+v, want VALIDATION_ERROR", url, envelope.Error)
		}
	}
}

func TestTopSeriesEndpointEmptyStore(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/series/top", nil)
	rec, envelope := doRequest(t, server, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with empty list", rec.Code)
	}

	var results []models.TopSeriesEntry
	if err := json.Unmarshal(envelope.Data, &results); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d rows from empty store, want 0", len(results))
	}
}

func TestGetSeriesEndpoint(t *testing.T) {
	server := setupTestServer(t)

	if rec, _ := postCSV(t, server, sampleBatch); rec.Code != http.StatusCreated {
		t.Fatalf("seed batch failed")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/series/1", nil)
	rec, envelope := doRequest(t, server, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var series models.Series
	if err := json.Unmarshal(envelope.Data, &series); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	if series.Name != "archipelago" {
		t.Errorf("Name = %q, want archipelago", series.Name)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/series/999", nil)
	rec, envelope = doRequest(t, server, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", envelope.Error)
	}
}

func TestHealthEndpoints(t *testing.T) {
	server := setupTestServer(t)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec, envelope := doRequest(t, server, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
		if envelope.Status != "success" {
			t.Errorf("%s: status field = %q, want success", path, envelope.Status)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "seertall_") {
		t.Error("metrics output missing seertall_ metric families")
	}
}
