// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package database

import (
	"errors"
	"strings"
)

// Sentinel errors for store-level failure classes.
var (
	// ErrConflict indicates a uniqueness constraint violation: either a
	// duplicate (day, series_id, screen) fact or a lost race creating a
	// series name. The enclosing batch is rolled back in full.
	ErrConflict = errors.New("uniqueness constraint violated")

	// ErrNotFound indicates a referenced row does not exist.
	ErrNotFound = errors.New("not found")
)

// IsConflict reports whether err is, or wraps, a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// isConstraintViolation classifies a raw DuckDB error as a uniqueness
// constraint violation. DuckDB surfaces these as constraint errors with a
// "Duplicate key" message; there is no structured error code to match on.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "violates unique constraint") ||
		strings.Contains(msg, "violates primary key")
}
