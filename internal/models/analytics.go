// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package models

// ISO weekday names indexed by isodow number (1=Monday .. 7=Sunday).
var weekdayNames = [8]string{
	"", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// WeekdayName returns the lowercase English name for an ISO weekday number,
// or an empty string for numbers outside 1..7.
func WeekdayName(isoWeekday int) string {
	if isoWeekday < 1 || isoWeekday > 7 {
		return ""
	}
	return weekdayNames[isoWeekday]
}

// WeekdayPopularity is one row of the popularity-by-weekday aggregation.
// Rank is the 0-based position ordered by ViewCount descending, ties broken
// by ascending weekday number for reproducibility. Weekdays with no facts in
// range are omitted entirely rather than zero-filled.
type WeekdayPopularity struct {
	Rank          int    `json:"rank"`
	Weekday       string `json:"weekday"`
	WeekdayNumber int    `json:"weekday_number"`
	ViewCount     int64  `json:"view_count"`
}

// TopSeriesEntry is one row of the top-series-by-total-views aggregation.
// Rank is the 0-based position within the returned page, restarting at 0 for
// every call regardless of offset; it is page-local, not global standing.
type TopSeriesEntry struct {
	SeriesID  int64  `json:"series_id"`
	Name      string `json:"name"`
	Rank      int    `json:"rank"`
	ViewCount int64  `json:"view_count"`
}

// IngestSummary reports what a successfully committed ingestion batch wrote.
type IngestSummary struct {
	RowsIngested  int `json:"rows_ingested"`
	SeriesCreated int `json:"series_created"`
}
