// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

// Package cache provides the query result cache store and deterministic
// cache key derivation.
//
// The store maps string keys to serialized query results with a fixed TTL.
// It is advisory only: every entry is re-derivable from the fact store, and a
// missing, expired, or corrupt entry must never block correctness, only
// performance.
package cache

import (
	"context"
	"time"
)

// Store is a shared key -> string cache with per-entry TTL.
//
// Get reports (value, true, nil) on a live entry and ("", false, nil) when
// the key is absent or expired. Errors indicate the store itself is
// unavailable; callers are expected to fall through to direct computation
// rather than fail the request.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}
