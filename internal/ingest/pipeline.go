// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

// Package ingest parses batch CSV uploads of daily view counts and commits
// them through the fact store as a single all-or-nothing transaction.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/seertall/seertall/internal/database"
	"github.com/seertall/seertall/internal/logging"
	"github.com/seertall/seertall/internal/metrics"
	"github.com/seertall/seertall/internal/models"
)

// expectedHeader is the CSV header of an upload, in order.
var expectedHeader = []string{"seriesId", "date", "screen", "views"}

// ErrMalformed indicates the upload itself is invalid: bad header, broken CSV
// framing, an empty batch, or a malformed field. Malformed batches are
// rejected before any transaction is opened.
var ErrMalformed = errors.New("malformed batch")

// IsMalformed reports whether err is a parse-stage rejection rather than a
// store failure.
func IsMalformed(err error) bool {
	var rowErr *RowError
	return errors.Is(err, ErrMalformed) || errors.As(err, &rowErr)
}

// RowError reports a malformed field in an ingestion row. Any single
// RowError rejects the entire batch; partial ingestion of a malformed batch
// is never committed.
type RowError struct {
	Line  int    // 1-based line number in the upload, header included
	Field string // column that failed: seriesId, date, screen, or views
	Value string // offending raw value
	Cause error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Field, e.Value, e.Cause)
}

func (e *RowError) Unwrap() error { return e.Cause }

// FactStore is the slice of the fact store the pipeline needs.
type FactStore interface {
	IngestBatch(ctx context.Context, rows []models.DayViewRow) (*models.IngestSummary, error)
}

// compile-time interface check
var _ FactStore = (*database.DB)(nil)

// Pipeline parses and commits ingestion batches.
type Pipeline struct {
	store FactStore
}

// NewPipeline creates an ingestion pipeline backed by the given fact store.
func NewPipeline(store FactStore) *Pipeline {
	return &Pipeline{store: store}
}

// Ingest reads one CSV batch from r and commits it atomically.
//
// Every row must parse in full: date as a YYYYMMDD calendar date, screen as
// one of the three recognized values, views as a non-negative integer. The
// first malformed field fails the whole batch with a *RowError and nothing is
// persisted. A uniqueness violation during the commit likewise rejects the
// whole batch; see database.IngestBatch.
func (p *Pipeline) Ingest(ctx context.Context, r io.Reader) (*models.IngestSummary, error) {
	rows, err := parseBatch(r)
	if err != nil {
		metrics.IngestBatchesTotal.WithLabelValues("validation_error").Inc()
		return nil, err
	}

	summary, err := p.store.IngestBatch(ctx, rows)
	if err != nil {
		if database.IsConflict(err) {
			metrics.IngestBatchesTotal.WithLabelValues("conflict").Inc()
		} else {
			metrics.IngestBatchesTotal.WithLabelValues("store_error").Inc()
		}
		return nil, err
	}

	metrics.IngestBatchesTotal.WithLabelValues("committed").Inc()
	return summary, nil
}

// parseBatch reads and validates every CSV row before anything touches the
// store, so a malformed batch is rejected without opening a transaction.
func parseBatch(r io.Reader) ([]models.DayViewRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(expectedHeader)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing CSV header", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", ErrMalformed, err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []models.DayViewRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}

		row, err := parseRow(line, record)
		if err != nil {
			logging.Debug().Err(err).Msg("Rejecting ingestion batch")
			return nil, err
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows after header", ErrMalformed)
	}
	return rows, nil
}

// checkHeader enforces the seriesId,date,screen,views header.
func checkHeader(header []string) error {
	for i, want := range expectedHeader {
		if i >= len(header) || !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("%w: unexpected CSV header %q: want %q", ErrMalformed,
				strings.Join(header, ","), strings.Join(expectedHeader, ","))
		}
	}
	return nil
}

// parseRow validates one data record. line is 1-based and includes the
// header line, matching what an operator sees in their upload.
func parseRow(line int, record []string) (models.DayViewRow, error) {
	seriesName := strings.TrimSpace(record[0])
	if seriesName == "" {
		return models.DayViewRow{}, &RowError{
			Line: line, Field: "seriesId", Value: record[0],
			Cause: fmt.Errorf("series identifier must not be empty"),
		}
	}

	day, err := time.Parse("20060102", strings.TrimSpace(record[1]))
	if err != nil {
		return models.DayViewRow{}, &RowError{
			Line: line, Field: "date", Value: record[1],
			Cause: fmt.Errorf("must be a calendar date in YYYYMMDD form"),
		}
	}

	screen, err := models.ParseScreen(strings.TrimSpace(record[2]))
	if err != nil {
		return models.DayViewRow{}, &RowError{Line: line, Field: "screen", Value: record[2], Cause: err}
	}

	views, err := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
	if err != nil {
		return models.DayViewRow{}, &RowError{
			Line: line, Field: "views", Value: record[3],
			Cause: fmt.Errorf("must be an integer"),
		}
	}
	if views < 0 {
		return models.DayViewRow{}, &RowError{
			Line: line, Field: "views", Value: record[3],
			Cause: fmt.Errorf("must not be negative"),
		}
	}

	return models.DayViewRow{
		SeriesName: seriesName,
		Day:        day,
		Screen:     screen,
		Views:      views,
	}, nil
}
