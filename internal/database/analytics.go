// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/seertall/seertall/internal/metrics"
	"github.com/seertall/seertall/internal/models"
)

// DateRange is an inclusive calendar-date window. A nil bound leaves that
// side unbounded.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// whereClause renders the range as SQL conditions on the given day column
// and appends the matching arguments.
func (r DateRange) whereClause(column string, args []interface{}) (string, []interface{}) {
	clause := ""
	if r.Start != nil {
		clause += fmt.Sprintf(" AND %s >= ?", column)
		args = append(args, *r.Start)
	}
	if r.End != nil {
		clause += fmt.Sprintf(" AND %s <= ?", column)
		args = append(args, *r.End)
	}
	return clause, args
}

// PopularityByWeekday sums a series' views per ISO weekday (1=Monday through
// 7=Sunday) over the inclusive date range, ordered by total views descending
// with ascending weekday number as the tie-break for reproducibility.
// Weekdays with no facts in range are omitted, not zero-filled. A series id
// with no facts yields an empty result, not an error.
func (db *DB) PopularityByWeekday(ctx context.Context, seriesID int64, dateRange DateRange) ([]models.WeekdayPopularity, error) {
	start := time.Now()

	args := []interface{}{seriesID}
	rangeSQL, args := dateRange.whereClause("day", args)

	query := fmt.Sprintf(`
	SELECT isodow(day) AS weekday_number, SUM(views) AS total_views
	FROM dayview
	WHERE series_id = ?%s
	GROUP BY weekday_number
	ORDER BY total_views DESC, weekday_number ASC`, rangeSQL)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("popularity_by_weekday").Inc()
		return nil, fmt.Errorf("failed to query weekday popularity: %w", err)
	}
	defer rows.Close()

	results := []models.WeekdayPopularity{}
	for rows.Next() {
		var weekdayNumber int
		var totalViews int64
		if err := rows.Scan(&weekdayNumber, &totalViews); err != nil {
			return nil, fmt.Errorf("failed to scan weekday popularity row: %w", err)
		}
		results = append(results, models.WeekdayPopularity{
			Rank:          len(results),
			Weekday:       models.WeekdayName(weekdayNumber),
			WeekdayNumber: weekdayNumber,
			ViewCount:     totalViews,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekday popularity rows: %w", err)
	}

	metrics.DBQueryDuration.WithLabelValues("popularity_by_weekday").Observe(time.Since(start).Seconds())
	return results, nil
}

// TopSeries ranks series by total views over the inclusive date range,
// ordered descending with ascending name as the tie-break, and applies
// offset then limit in the store. Rank is the 0-based position within the
// returned page: it restarts at 0 on every call regardless of offset.
func (db *DB) TopSeries(ctx context.Context, dateRange DateRange, limit, offset int) ([]models.TopSeriesEntry, error) {
	start := time.Now()

	var args []interface{}
	rangeSQL, args := dateRange.whereClause("v.day", args)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
	SELECT s.id, s.name, SUM(v.views) AS total_views
	FROM dayview v
	JOIN series s ON v.series_id = s.id
	WHERE 1=1%s
	GROUP BY s.id, s.name
	ORDER BY total_views DESC, s.name ASC
	LIMIT ? OFFSET ?`, rangeSQL)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("top_series").Inc()
		return nil, fmt.Errorf("failed to query top series: %w", err)
	}
	defer rows.Close()

	results := []models.TopSeriesEntry{}
	for rows.Next() {
		var entry models.TopSeriesEntry
		if err := rows.Scan(&entry.SeriesID, &entry.Name, &entry.ViewCount); err != nil {
			return nil, fmt.Errorf("failed to scan top series row: %w", err)
		}
		entry.Rank = len(results)
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top series rows: %w", err)
	}

	metrics.DBQueryDuration.WithLabelValues("top_series").Observe(time.Since(start).Seconds())
	return results, nil
}

// Stats summarizes the fact store for the stats endpoint and readiness
// reporting.
type Stats struct {
	TotalSeries   int64      `json:"total_series"`
	TotalDayViews int64      `json:"total_day_views"`
	TotalViews    int64      `json:"total_views"`
	LastDay       *time.Time `json:"last_day,omitempty"`
}

// GetStats returns store-wide totals.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	start := time.Now()

	query := `
	SELECT
		(SELECT COUNT(*) FROM series),
		(SELECT COUNT(*) FROM dayview),
		(SELECT COALESCE(SUM(views), 0) FROM dayview),
		(SELECT MAX(day) FROM dayview)`

	var stats Stats
	err := db.conn.QueryRowContext(ctx, query).Scan(
		&stats.TotalSeries, &stats.TotalDayViews, &stats.TotalViews, &stats.LastDay)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("stats").Inc()
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}

	metrics.DBQueryDuration.WithLabelValues("stats").Observe(time.Since(start).Seconds())
	return &stats, nil
}

// GetSeriesByName fetches one series row by its unique name, returning
// ErrNotFound when no series has that name.
func (db *DB) GetSeriesByName(ctx context.Context, name string) (*models.Series, error) {
	var series models.Series
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM series WHERE name = ?`, name).Scan(&series.ID, &series.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("series %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query series %q: %w", name, err)
	}
	return &series, nil
}

// GetSeriesByID fetches one series row, returning ErrNotFound when the id
// does not exist.
func (db *DB) GetSeriesByID(ctx context.Context, id int64) (*models.Series, error) {
	var series models.Series
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM series WHERE id = ?`, id).Scan(&series.ID, &series.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("series %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query series %d: %w", id, err)
	}
	return &series, nil
}
