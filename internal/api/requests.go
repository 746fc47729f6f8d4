// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package api

import (
	"fmt"
	"time"

	"github.com/seertall/seertall/internal/database"
)

// PopularityByWeekdayRequest carries the query parameters of the
// popularity-by-weekday endpoint. Dates are optional inclusive bounds in
// compact YYYYMMDD form.
type PopularityByWeekdayRequest struct {
	SeriesID  int64  `json:"series_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"omitempty,yyyymmdd"`
	EndDate   string `json:"end_date" validate:"omitempty,yyyymmdd"`
}

// TopSeriesRequest carries the query parameters of the top-series endpoint.
// The upper bound on Limit comes from configuration and is checked by the
// handler, not a static tag.
type TopSeriesRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,yyyymmdd"`
	EndDate   string `json:"end_date" validate:"omitempty,yyyymmdd"`
	Limit     int    `json:"limit" validate:"gte=1"`
	Offset    int    `json:"offset" validate:"gte=0"`
}

// parseDateRange converts validated YYYYMMDD bounds into a database range.
// Empty strings leave that side unbounded.
func parseDateRange(startDate, endDate string) (database.DateRange, error) {
	var dr database.DateRange

	if startDate != "" {
		t, err := time.Parse("20060102", startDate)
		if err != nil {
			return dr, fmt.Errorf("invalid start_date %q: %w", startDate, err)
		}
		dr.Start = &t
	}
	if endDate != "" {
		t, err := time.Parse("20060102", endDate)
		if err != nil {
			return dr, fmt.Errorf("invalid end_date %q: %w", endDate, err)
		}
		dr.End = &t
	}
	if dr.Start != nil && dr.End != nil && dr.End.Before(*dr.Start) {
		return dr, fmt.Errorf("end_date %s precedes start_date %s", endDate, startDate)
	}
	return dr, nil
}
