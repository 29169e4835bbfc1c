// Package server exposes the integration service over HTTP.
//
//	POST /integrate  run one integration request
//	GET  /schema     request/response schema for agent registration
//	GET  /health     liveness check
//	GET  /metrics    Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zoobzio/pipz"

	"github.com/njchilds90/integral"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// ReasonTimeout is reported when a request exceeds Config.Timeout.
const ReasonTimeout = "timeout"

// Integrator runs one integration request.
type Integrator interface {
	Integrate(ctx context.Context, req integral.Request) integral.Result
}

// Config holds the HTTP boundary limits.
type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() Config {
	return Config{Timeout: 30 * time.Second, MaxBodyBytes: 1 << 20}
}

// Server is the HTTP front of an Integrator.
type Server struct {
	cfg    Config
	logger *slog.Logger
	runner pipz.Chainable[*job]
	schema []byte
}

// job is one request travelling through the time-limited runner.
type job struct {
	req integral.Request
	res integral.Result
}

// New builds a Server. A nil logger logs through slog.Default.
func New(svc Integrator, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	var runner pipz.Chainable[*job] = pipz.Apply("integrate", func(ctx context.Context, j *job) (*job, error) {
		j.res = svc.Integrate(ctx, j.req)
		return j, nil
	})
	if cfg.Timeout > 0 {
		runner = pipz.NewTimeout("integrate-timeout", runner, cfg.Timeout)
	}
	return &Server{cfg: cfg, logger: logger, runner: runner, schema: toolSchema()}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/integrate", s.handleIntegrate)
	mux.HandleFunc("/schema", s.handleSchema)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// StatusFor maps a result to its HTTP status.
func StatusFor(res integral.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Kind {
	case integral.KindInput:
		return http.StatusBadRequest
	case integral.KindNoSolution:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func failure(reason string) integral.Result {
	return integral.Result{Error: reason, Steps: []string{}, Methods: []string{}}
}

func (s *Server) handleIntegrate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.New().String()
	}
	w.Header().Set(RequestIDHeader, id)
	log := s.logger.With(slog.String("request_id", id))

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic in /integrate", slog.Any("panic", rec), slog.String("stack", string(debug.Stack())))
			writeJSON(w, http.StatusInternalServerError, failure(integral.ReasonServerError))
		}
	}()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, failure("method not allowed"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req integral.Request
	if err := dec.Decode(&req); err != nil {
		log.Warn("invalid request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, failure("invalid JSON"))
		return
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, failure("invalid JSON: trailing data"))
		return
	}

	ctx := integral.WithRequestID(r.Context(), id)
	j, err := s.runner.Process(ctx, &job{req: req})
	if err != nil {
		log.Warn("integration aborted",
			slog.String("function", req.Function),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		writeJSON(w, http.StatusServiceUnavailable, failure(ReasonTimeout))
		return
	}

	res := j.res
	status := StatusFor(res)
	log.Info("integrate",
		slog.String("function", req.Function),
		slog.Bool("success", res.Success),
		slog.String("error", res.Error),
		slog.Int("status", status),
		slog.Duration("elapsed", time.Since(start)),
	)
	writeJSON(w, status, res)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.schema)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
