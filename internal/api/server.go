// Package api exposes inventory reports over HTTP for serve mode. The
// server is read-mostly: GET endpoints answer from the tracker's latest
// completed report, and a POST /api/v1/refresh re-runs the analysis on
// demand.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/depsight/depsight/pkg/buildinfo"
	"github.com/depsight/depsight/pkg/errors"
	"github.com/depsight/depsight/pkg/inventory"
)

// Refresher re-runs the inventory analysis and publishes the result to
// the tracker before returning it.
type Refresher func(ctx context.Context) (*inventory.Report, error)

// Options configures a Server.
type Options struct {
	Tracker  *inventory.Tracker       // Report source (required)
	Refresh  Refresher                // On-demand refresh (required)
	Breakers func() map[string]string // Registry breaker states for /healthz (optional)
	Logger   *log.Logger              // Request/refresh logging (optional)
	Metrics  *Metrics                 // Instruments (optional)
	Gatherer prometheus.Gatherer      // /metrics source (default: prometheus.DefaultGatherer)
}

// Server handles the serve-mode HTTP API.
type Server struct {
	tracker  *inventory.Tracker
	refresh  Refresher
	breakers func() map[string]string
	logger   *log.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
}

// New creates a Server with the given options.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		tracker:  opts.Tracker,
		refresh:  opts.Refresh,
		breakers: opts.Breakers,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
	}
}

// Router builds the route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Post("/refresh", s.handleRefresh)
		// Wildcard rather than {name}: scoped packages like @types/node
		// carry a slash in the name.
		r.Get("/packages/*", s.handlePackage)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":  "ok",
		"version": buildinfo.Version,
	}
	if s.breakers != nil {
		health["registry_breakers"] = s.breakers()
	}
	if report := s.tracker.Latest(); report != nil {
		health["last_report"] = report.GeneratedAt
	}
	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := s.tracker.Latest()
	if report == nil {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "no report completed yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := s.runRefresh(r.Context(), "manual")
	if err != nil {
		code := errors.GetCode(err)
		switch code {
		case errors.ErrCodeManifestNotFound, errors.ErrCodeInvalidManifest:
			writeError(w, http.StatusUnprocessableEntity, code, errors.UserMessage(err))
		default:
			writeError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "refresh failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	report := s.tracker.Latest()
	if report == nil {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "no report completed yet")
		return
	}
	name := chi.URLParam(r, "*")
	pkg, ok := report.Find(name)
	if !ok {
		writeError(w, http.StatusNotFound, errors.ErrCodePackageNotFound, name+" is not declared in the manifest")
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

// runRefresh invokes the refresher and records duration and outcome.
func (s *Server) runRefresh(ctx context.Context, trigger string) (*inventory.Report, error) {
	start := time.Now()
	report, err := s.refresh(ctx)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		s.logger.Error("refresh failed", "trigger", trigger, "err", err)
	} else {
		s.logger.Info("refresh completed", "trigger", trigger, "packages", len(report.Packages), "took", elapsed)
	}
	if s.metrics != nil {
		s.metrics.RefreshesTotal.WithLabelValues(trigger, status).Inc()
		s.metrics.RefreshDuration.Observe(elapsed.Seconds())
	}
	return report, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errors.Code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    string(code),
			"message": message,
		},
	})
}
