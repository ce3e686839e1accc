// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cultivar/internal/metrics"
)

// HTTPServer is the lifecycle of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// StatusFunc reports the scheduler state for the health endpoint.
type StatusFunc func() RunStatus

// HealthRateLimit is the per-client request budget for /healthz.
var HealthRateLimit = struct {
	Requests int
	Window   time.Duration
}{Requests: 1000, Window: time.Minute}

// NewMetricsRouter serves the Prometheus registry on /metrics and the run
// status on /healthz. /healthz answers 503 while the latest run has failed.
func NewMetricsRouter(status StatusFunc) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.With(httprate.LimitByIP(HealthRateLimit.Requests, HealthRateLimit.Window)).
		Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			st := RunStatus{}
			if status != nil {
				st = status()
			}
			code := http.StatusOK
			if !st.Healthy() {
				code = http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			_ = json.NewEncoder(w).Encode(st)
		})
	return r
}

// MetricsService serves the metrics listener under supervision.
//
// ListenAndServe runs in its own goroutine; on context cancellation the
// server is shut down with shutdownTimeout and Serve returns ctx.Err().
type MetricsService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewMetricsService wraps server. A non-positive shutdownTimeout means 10s.
func NewMetricsService(server HTTPServer, shutdownTimeout time.Duration) *MetricsService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &MetricsService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "metrics-server",
	}
}

// NewMetricsServer builds the http.Server for addr with sane timeouts.
func NewMetricsServer(addr string, status StatusFunc) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewMetricsRouter(status),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Serve implements suture.Service.
func (m *MetricsService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// The serve context is already cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
		defer cancel()

		if err := m.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture's event log.
func (m *MetricsService) String() string {
	return m.name
}
