// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP endpoints.
//
// Status is "success" or "error". Data carries the payload on success; Error
// is populated only when Status is "error". Metadata reports query timing and
// whether the payload was served from the cache.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
// Cached responses report QueryTimeMS of 0 and Cached true.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries a machine-readable error code alongside a human-readable
// message.
//
// Codes used by Seertall:
//   - VALIDATION_ERROR: malformed request or ingestion row
//   - CONFLICT: uniqueness violation on ingest (duplicate fact or series race)
//   - NOT_FOUND: resource does not exist
//   - DATABASE_ERROR: fact store failure
//   - SERVICE_ERROR: dependency unavailable
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
