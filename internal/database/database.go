// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

// Package database implements the Seertall fact store on DuckDB: schema
// management, transactional batch ingestion with series resolution, and the
// ranked aggregation queries.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/seertall/seertall/internal/config"
	"github.com/seertall/seertall/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
// The handle is constructed explicitly and injected into every consumer;
// there is no process-wide lazily initialized connection.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens the DuckDB database described by cfg and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed databases
	if !isMemoryPath(cfg.Path) {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}

	if err := db.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Debug().Str("path", cfg.Path).Int("threads", numThreads).Msg("Database opened")
	return db, nil
}

// isMemoryPath reports whether the configured path selects an in-memory
// database.
func isMemoryPath(path string) bool {
	return path == "" || path == ":memory:" || strings.HasPrefix(path, ":memory:")
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Ping checks if the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// createTables creates the series and dayview tables.
//
// The two unique constraints are the only mutual-exclusion mechanism in the
// system: concurrent batches racing to create the same series name, or to
// commit the same (day, series_id, screen) triple, are serialized here and
// the losing batch fails with a conflict.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS series_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS series (
			id BIGINT PRIMARY KEY DEFAULT nextval('series_id_seq'),
			name VARCHAR NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS dayview (
			id UUID PRIMARY KEY,
			day DATE NOT NULL,
			series_id BIGINT NOT NULL,
			screen VARCHAR NOT NULL,
			views BIGINT NOT NULL CHECK (views >= 0),
			UNIQUE (day, series_id, screen)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// closeQuietly closes a resource, logging any error instead of returning it.
func closeQuietly(c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing database resource")
	}
}
