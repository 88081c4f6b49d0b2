// Package server exposes the simulator over HTTP as JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/lmittmann/tint"
	"github.com/rs/cors"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/export"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
)

const (
	maxBodyBytes    = 1 << 16
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	registry *experiment.Registry
	log      *slog.Logger
}

func New(cfg *config.Config, log *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		registry: experiment.NewRegistry(),
		log:      log,
	}
}

// SimulateRequest is the body of POST /api/simulate. Omitted parameters take
// the preset's value if one is named, otherwise the configured defaults.
type SimulateRequest struct {
	Preset    string   `json:"preset,omitempty"`
	Mass      *float64 `json:"mass,omitempty"`
	Stiffness *float64 `json:"stiffness,omitempty"`
	Damping   *float64 `json:"damping,omitempty"`
	Dt        *float64 `json:"dt,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
	Metrics   []string `json:"metrics,omitempty"`
}

func (r SimulateRequest) params(base dynamo.Params) (dynamo.Params, error) {
	p := base
	if r.Preset != "" {
		preset, ok := config.Presets[r.Preset]
		if !ok {
			return p, fmt.Errorf("%w: %q", config.ErrUnknownPreset, r.Preset)
		}
		p = preset
	}
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Mass, r.Mass)
	set(&p.Stiffness, r.Stiffness)
	set(&p.Damping, r.Damping)
	set(&p.Dt, r.Dt)
	set(&p.Duration, r.Duration)
	return p, nil
}

// Handler returns the routed, CORS-wrapped and logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	mux.HandleFunc("GET /api/presets", s.handlePresets)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /health", s.handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return s.logRequests(c.Handler(mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	p, err := req.params(s.cfg.Params)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := config.CheckSteps(p, s.cfg.MaxSteps); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	ms, err := s.registry.GetMetrics(req.Metrics...)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	ts := physics.Simulate(p)
	values := metrics.Evaluate(ts, ms...)
	s.log.Debug("simulated", "samples", ts.Len(), "elapsed", time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteJSON(w, export.NewData(p, ts, values)); err != nil {
		s.log.Error("write response", tint.Err(err))
	}
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, config.Presets)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.ListMetrics())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response", tint.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.log.Warn("request rejected", "status", status, tint.Err(err))
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start),
		)
	})
}
