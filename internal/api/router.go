// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Endpoint-specific rate limits. Ingestion is write-heavy and limited more
// tightly than the cached read endpoints; health checks stay permissive for
// monitoring tools.
var (
	rateLimitIngest = struct {
		requests int
		window   time.Duration
	}{30, time.Minute}

	rateLimitQuery = struct {
		requests int
		window   time.Duration
	}{300, time.Minute}

	rateLimitHealth = struct {
		requests int
		window   time.Duration
	}{1000, time.Minute}
)

// Router assembles the HTTP handler tree.
type Router struct {
	handler *Handler
}

// NewRouter creates a router around the given handler.
func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler}
}

// Setup configures all routes and middleware and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rateLimitHealth.requests, rateLimitHealth.window))
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(PrometheusMetrics)

		r.With(httprate.LimitByIP(rateLimitIngest.requests, rateLimitIngest.window)).
			Post("/ingest", router.handler.Ingest)

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(rateLimitQuery.requests, rateLimitQuery.window))
			r.Get("/series/popularity-by-weekday", router.handler.PopularityByWeekday)
			r.Get("/series/top", router.handler.TopSeries)
			r.Get("/series/{id}", router.handler.GetSeries)
			r.Get("/stats", router.handler.Stats)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
