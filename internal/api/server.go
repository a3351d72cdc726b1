// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the HTTP control surface: probes, metrics, scan
// triggers, reports and program explanations.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/sportsdvr/internal/dvr"
	"github.com/ManuGH/sportsdvr/internal/health"
	"github.com/ManuGH/sportsdvr/internal/log"
)

// Scanner is the part of the scan engine the API drives.
type Scanner interface {
	Run(ctx context.Context, req dvr.RunRequest) (*dvr.RunReport, error)
	LatestReport() (*dvr.RunReport, bool)
	Catalog() *dvr.Catalog
}

// Options configures a Server.
type Options struct {
	Scanner Scanner
	Health  *health.Manager
	// RateLimit is the allowed requests per minute and client on /api routes.
	// Zero disables limiting.
	RateLimit int
	// ServiceName names the server spans.
	ServiceName string
}

// Server is the HTTP API.
type Server struct {
	scanner Scanner
	health  *health.Manager
	now     func() time.Time
	logger  zerolog.Logger
	handler http.Handler
}

// New builds the router.
func New(opts Options) *Server {
	if opts.ServiceName == "" {
		opts.ServiceName = "sportsdvr"
	}
	if opts.Health == nil {
		opts.Health = health.NewManager("")
	}
	s := &Server{
		scanner: opts.Scanner,
		health:  opts.Health,
		now:     time.Now,
		logger:  log.WithComponent("api"),
	}
	s.handler = tracing(opts.ServiceName)(s.routes(opts.RateLimit))
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes(rateLimitPerMinute int) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(observe)
	r.Use(recoverer)

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if rateLimitPerMinute > 0 {
			r.Use(rateLimit(rateLimitPerMinute))
		}
		r.Post("/scan", s.handleScan)
		r.Get("/reports/latest", s.handleLatestReport)
		r.Get("/subscriptions", s.handleSubscriptions)
		r.Post("/classify", s.handleClassify)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeProblem(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}
