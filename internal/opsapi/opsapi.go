// Package opsapi is the operator-facing control surface: trigger a sweep
// for a retailer, inspect recent sweep history, and expose liveness and
// Prometheus metrics for the process running the pipeline.
package opsapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/internal/master"
	pkgerrors "github.com/adeco-retail/vtexwatch/pkg/errors"
	pkghttp "github.com/adeco-retail/vtexwatch/pkg/http"
	"github.com/adeco-retail/vtexwatch/pkg/health"
	"github.com/adeco-retail/vtexwatch/pkg/logging"
	"github.com/adeco-retail/vtexwatch/pkg/middleware"
	"github.com/adeco-retail/vtexwatch/pkg/validator"
)

// Server is the ops HTTP surface for one running pipeline process.
type Server struct {
	master  *master.Master
	sweeps  domain.SweepLogRepository
	health  *health.Manager
	log     logging.Logger
	router  chi.Router
}

// New wires the ops API router.
func New(m *master.Master, sweeps domain.SweepLogRepository, healthMgr *health.Manager, log logging.Logger) *Server {
	s := &Server{master: m, sweeps: sweeps, health: healthMgr, log: log}
	s.router = s.buildRouter()
	return s
}

// Handler returns the root http.Handler for this server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.Use(middleware.DefaultCORS())
	r.Use(middleware.Metrics)

	r.Get("/healthz", s.health.Handler())
	r.Get("/livez", health.LivenessHandler())
	r.Get("/readyz", s.health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/ops/sweeps/{host}", func(r chi.Router) {
		r.Post("/", s.triggerSweep)
		r.Get("/", s.recentSweeps)
	})

	return r
}

type triggerResponse struct {
	Host    string `json:"host"`
	Started bool   `json:"started"`
}

// triggerSweep kicks off a full-process run for the host in the background
// and returns immediately; the run's outcome is visible via recentSweeps.
func (s *Server) triggerSweep(w http.ResponseWriter, r *http.Request) {
	host := chi.URLParam(r, "host")
	if err := validator.ValidateVar(host, "required,hostname_rfc1123"); err != nil {
		pkgerrors.HandleHTTPError(w, pkgerrors.BadRequest("host must be a valid hostname"))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 6*time.Hour)
		defer cancel()
		if err := s.master.RunFullProcess(ctx, host); err != nil {
			s.log.Error("triggered sweep failed", logging.String("host", host), logging.Error(err))
		}
	}()

	pkghttp.WriteJSON(w, http.StatusAccepted, triggerResponse{Host: host, Started: true})
}

// recentSweeps returns the last N SweepLog rows for the host, across every
// phase type.
func (s *Server) recentSweeps(w http.ResponseWriter, r *http.Request) {
	host := chi.URLParam(r, "host")
	if err := validator.ValidateVar(host, "required,hostname_rfc1123"); err != nil {
		pkgerrors.HandleHTTPError(w, pkgerrors.BadRequest("host must be a valid hostname"))
		return
	}

	rows, err := s.sweeps.Recent(r.Context(), host, 50)
	if err != nil {
		pkgerrors.HandleHTTPError(w, pkgerrors.InternalWrap(err, "failed to load sweep history"))
		return
	}

	pkghttp.WriteSuccess(w, rows)
}
