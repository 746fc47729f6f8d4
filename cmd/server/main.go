// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

// Package main is the entry point for the Seertall server.
//
// Seertall ingests daily per-series view counts from batch CSV uploads and
// answers ranked aggregation queries over them: popularity by weekday and top
// series by total views. Aggregations are served through a cache-aside layer
// with a fixed short TTL.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, config file, env)
//  2. Logging: zerolog, JSON or console format
//  3. Fact store: DuckDB with schema creation
//  4. Query cache: BadgerDB store (optional, CACHE_ENABLED)
//  5. HTTP server: Chi router with Prometheus metrics at /metrics
//
// Shutdown on SIGINT or SIGTERM drains in-flight requests before closing the
// cache store and the fact store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seertall/seertall/internal/api"
	"github.com/seertall/seertall/internal/cache"
	"github.com/seertall/seertall/internal/config"
	"github.com/seertall/seertall/internal/database"
	"github.com/seertall/seertall/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger; config not yet available
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Dur("cache_ttl", cfg.Cache.TTL).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize fact store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing fact store")
		}
	}()
	logging.Info().Msg("Fact store initialized")

	var store cache.Store
	if cfg.Cache.Enabled {
		badgerStore, err := cache.NewBadgerStore(cfg.Cache.Path)
		if err != nil {
			// The cache is advisory; start without it rather than refuse to serve
			logging.Warn().Err(err).Msg("Query cache unavailable, serving uncached")
		} else {
			store = badgerStore
			defer func() {
				if err := badgerStore.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing cache store")
				}
			}()
			logging.Info().Str("path", cfg.Cache.Path).Msg("Query cache initialized")
		}
	}

	handler := api.NewHandler(db, store, cfg)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logging.Error().Err(err).Msg("HTTP server failed")
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logging.Info().Msg("Server stopped")
}
