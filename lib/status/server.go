// Package status serves the outcome of the latest update cycle over HTTP.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ghodss/yaml"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/onkernel/swarm-updater/lib/middleware"
	"github.com/onkernel/swarm-updater/lib/reconciler"
	"github.com/riandyrn/otelchi"
)

// ReportSource provides the most recent cycle report.
type ReportSource interface {
	LastReport() *reconciler.Report
}

// Server is the optional status HTTP server.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// New creates a status server listening on addr.
func New(addr, serviceName string, source ReportSource, logger *slog.Logger, httpMetrics *middleware.HTTPMetrics) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(serviceName, source, logger, httpMetrics),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// NewHandler builds the status router.
func NewHandler(serviceName string, source ReportSource, logger *slog.Logger, httpMetrics *middleware.HTTPMetrics) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.AccessLogger(logger))
	r.Use(httpMetrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		report := source.LastReport()
		if report == nil {
			http.Error(w, "no update cycle completed yet", http.StatusServiceUnavailable)
			return
		}

		if r.URL.Query().Get("format") == "yaml" {
			data, err := yaml.Marshal(report)
			if err != nil {
				logger.ErrorContext(r.Context(), "failed to encode report", "error", err)
				http.Error(w, "failed to encode report", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/yaml")
			w.Write(data)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.ErrorContext(r.Context(), "failed to encode report", "error", err)
		}
	})

	return r
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting status server", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
