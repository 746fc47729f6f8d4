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

	"github.com/google/uuid"

	"github.com/seertall/seertall/internal/logging"
	"github.com/seertall/seertall/internal/metrics"
	"github.com/seertall/seertall/internal/models"
)

// seriesRegistry resolves series names to ids within one ingestion batch.
//
// The lookup map is scoped to a single batch and a single transaction; it is
// constructed at the start of IngestBatch and discarded when it returns,
// never shared across calls or goroutines. It is a round-trip saver, not a
// lock: concurrent creation of the same new name across batches relies
// entirely on the store's unique-name constraint.
type seriesRegistry struct {
	tx      *sql.Tx
	byName  map[string]int64
	created int
}

func newSeriesRegistry(tx *sql.Tx) *seriesRegistry {
	return &seriesRegistry{tx: tx, byName: make(map[string]int64)}
}

// resolve returns the series id for name, creating the series inside the
// batch transaction on first sight. Because both the lookup and the insert
// run on the transaction, a name inserted earlier in the same batch is
// visible here before commit.
func (r *seriesRegistry) resolve(ctx context.Context, name string) (int64, error) {
	if id, ok := r.byName[name]; ok {
		return id, nil
	}

	var id int64
	err := r.tx.QueryRowContext(ctx, `SELECT id FROM series WHERE name = ?`, name).Scan(&id)
	switch {
	case err == nil:
		r.byName[name] = id
		return id, nil
	case errors.Is(err, sql.ErrNoRows):
		// First sight: create the series and capture its generated id
		err = r.tx.QueryRowContext(ctx,
			`INSERT INTO series (name) VALUES (?) RETURNING id`, name).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to create series %q: %w", name, err)
		}
		r.byName[name] = id
		r.created++
		return id, nil
	default:
		return 0, fmt.Errorf("failed to look up series %q: %w", name, err)
	}
}

// IngestBatch commits a batch of parsed day-view rows as a single
// transaction: either every row (and any newly created series) is durably
// persisted, or none are.
//
// A uniqueness violation on any row rejects the whole batch with ErrConflict;
// re-ingesting an existing (day, series_id, screen) triple is operator error,
// not an update path. The caller decides whether to retry with corrected
// data.
func (db *DB) IngestBatch(ctx context.Context, rows []models.DayViewRow) (*models.IngestSummary, error) {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("ingest_batch").Inc()
		return nil, fmt.Errorf("failed to begin ingestion transaction: %w", err)
	}

	summary, err := db.stageBatch(ctx, tx, rows)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Warn().Err(rbErr).Msg("Rollback failed after ingestion error")
		}
		metrics.DBQueryErrors.WithLabelValues("ingest_batch").Inc()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		metrics.DBQueryErrors.WithLabelValues("ingest_batch").Inc()
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("batch rejected at commit: %w: %w", ErrConflict, err)
		}
		return nil, fmt.Errorf("failed to commit ingestion batch: %w", err)
	}

	metrics.DBQueryDuration.WithLabelValues("ingest_batch").Observe(time.Since(start).Seconds())
	metrics.IngestRowsTotal.Add(float64(summary.RowsIngested))
	metrics.SeriesCreatedTotal.Add(float64(summary.SeriesCreated))

	logging.Info().
		Int("rows", summary.RowsIngested).
		Int("series_created", summary.SeriesCreated).
		Dur("duration", time.Since(start)).
		Msg("Ingestion batch committed")

	return summary, nil
}

// stageBatch resolves series and stages every dayview insert on tx.
// Any failure aborts staging; the caller rolls the transaction back.
func (db *DB) stageBatch(ctx context.Context, tx *sql.Tx, rows []models.DayViewRow) (*models.IngestSummary, error) {
	registry := newSeriesRegistry(tx)

	for i, row := range rows {
		seriesID, err := registry.resolve(ctx, row.SeriesName)
		if err != nil {
			if isConstraintViolation(err) {
				return nil, fmt.Errorf("row %d: series %q: %w: %w", i+1, row.SeriesName, ErrConflict, err)
			}
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO dayview (id, day, series_id, screen, views) VALUES (?, ?, ?, ?, ?)`,
			uuid.New().String(), row.Day, seriesID, row.Screen.String(), row.Views)
		if err != nil {
			if isConstraintViolation(err) {
				return nil, fmt.Errorf("row %d: duplicate fact (%s, %s, %s): %w",
					i+1, row.Day.Format("2006-01-02"), row.SeriesName, row.Screen, ErrConflict)
			}
			return nil, fmt.Errorf("row %d: failed to insert day view: %w", i+1, err)
		}
	}

	return &models.IngestSummary{
		RowsIngested:  len(rows),
		SeriesCreated: registry.created,
	}, nil
}
