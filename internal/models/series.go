// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

// Package models defines the domain types shared across Seertall:
// series, daily view facts, ranked aggregation results, and the
// standardized API response envelope.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Series is a named logical content item whose daily view counts are tracked.
// A series is created lazily the first time an ingestion batch references its
// name; names are globally unique and series are never updated or deleted.
type Series struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Screen identifies the device class a view count was observed on.
// It is a closed enumeration; unrecognized values are rejected at parse time
// rather than at storage time.
type Screen string

// Recognized screen types.
const (
	ScreenDesktop Screen = "desktop"
	ScreenTablet  Screen = "tablet"
	ScreenMobile  Screen = "mobile"
)

// ParseScreen converts a raw string into a Screen, rejecting anything outside
// the closed set of recognized values.
func ParseScreen(s string) (Screen, error) {
	switch Screen(s) {
	case ScreenDesktop, ScreenTablet, ScreenMobile:
		return Screen(s), nil
	default:
		return "", fmt.Errorf("unrecognized screen type %q (must be desktop, tablet, or mobile)", s)
	}
}

// String returns the wire representation of the screen type.
func (s Screen) String() string { return string(s) }

// DayView is one immutable (day, series, screen) view-count observation.
// The triple (Day, SeriesID, Screen) is unique in the fact store; facts are
// only ever inserted, never updated or deleted.
type DayView struct {
	ID       uuid.UUID `json:"id"`
	Day      time.Time `json:"day"`
	SeriesID int64     `json:"series_id"`
	Screen   Screen    `json:"screen"`
	Views    int64     `json:"views"`
}

// DayViewRow is a parsed ingestion row before series resolution. SeriesName
// still carries the human-readable identifier from the upload; the fact store
// resolves it to a series id inside the batch transaction.
type DayViewRow struct {
	SeriesName string
	Day        time.Time
	Screen     Screen
	Views      int64
}
