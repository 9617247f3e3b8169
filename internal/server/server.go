// Package server exposes the LCS engine over HTTP.
//
// Routes:
//
//	POST /v1/lcs         compute the LCS of a pair
//	GET  /v1/strategies  list the registered strategies
//	GET  /health         liveness check
//	GET  /metrics        Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	apperrors "github.com/agbru/lcscalc/internal/errors"
	"github.com/agbru/lcscalc/internal/lcs"
	"github.com/agbru/lcscalc/internal/logging"
)

// Config holds the server settings.
type Config struct {
	Listen string
	// Timeout bounds a single computation.
	Timeout time.Duration
	// Workers and Processes are used when a request leaves them at zero.
	Workers   int
	Processes int
	// CacheBytes sizes the result cache. Zero disables it.
	CacheBytes      int64
	ShutdownTimeout time.Duration
	Security        SecurityConfig
}

// DefaultConfig returns the settings used by `lcscalc serve`.
func DefaultConfig() Config {
	return Config{
		Listen:          ":8080",
		Timeout:         time.Minute,
		CacheBytes:      64 << 20,
		ShutdownTimeout: 10 * time.Second,
		Security:        DefaultSecurityConfig(),
	}
}

// Request is the body of POST /v1/lcs.
type Request struct {
	A         string `json:"a"`
	B         string `json:"b"`
	Strategy  string `json:"strategy,omitempty"`
	Workers   int    `json:"workers,omitempty"`
	Processes int    `json:"processes,omitempty"`
	Trace     string `json:"trace,omitempty"`
	Alphabet  string `json:"alphabet,omitempty"`
}

// Response is the body of a successful POST /v1/lcs.
type Response struct {
	RequestID string  `json:"request_id"`
	Strategy  string  `json:"strategy"`
	Workers   int     `json:"workers"`
	M         int     `json:"m"`
	N         int     `json:"n"`
	Length    int     `json:"length"`
	LCS       string  `json:"lcs,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Cached    bool    `json:"cached"`
}

type errorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

// Server serves the HTTP API.
type Server struct {
	cfg      Config
	factory  lcs.SolverFactory
	router   *mux.Router
	httpSrv  *http.Server
	cache    *resultCache
	metrics  *Metrics
	logger   logging.Logger
	security SecurityConfig
}

// NewServer builds a server over factory.
func NewServer(factory lcs.SolverFactory, cfg Config, logger logging.Logger) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		factory:  factory,
		metrics:  NewMetrics(),
		logger:   logger,
		security: cfg.Security,
	}
	if cfg.CacheBytes > 0 {
		c, err := newResultCache(cfg.CacheBytes)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.HandleFunc("/v1/lcs", s.wrap("/v1/lcs", s.handleLCS)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/v1/strategies", s.wrap("/v1/strategies", s.handleStrategies)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/health", s.wrap("/health", s.handleHealth))
	r.HandleFunc("/metrics", s.handleMetrics)
	s.router = r

	s.httpSrv = &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves on cfg.Listen until ctx ends, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return apperrors.NewConfigError("cannot listen on %s: %v", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.cache.close()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))
		errCh <- s.httpSrv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// wrap applies the security and metrics middlewares to a route.
func (s *Server) wrap(route string, h http.HandlerFunc) http.HandlerFunc {
	return SecurityMiddleware(s.security, s.metricsMiddleware(s.countRoute(route, h)))
}

type requestIDKey struct{}

// requestIDMiddleware propagates X-Request-ID or assigns a fresh one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestID returns the id assigned by the request id middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) countRoute(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next(rec, r)
		s.metrics.ObserveRequest(r.Method, route, rec.code)
		s.logger.Debug("request",
			logging.String("method", r.Method),
			logging.String("route", route),
			logging.Int("status", rec.code),
			logging.Duration("elapsed", time.Since(start)),
			logging.String("request_id", RequestID(r.Context())))
	}
}

func (s *Server) handleLCS(w http.ResponseWriter, r *http.Request) {
	id := RequestID(r.Context())

	var req Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, id, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := s.normalize(&req); err != nil {
		s.writeError(w, id, http.StatusBadRequest, err)
		return
	}

	key := cacheKey(&req)
	if cached, ok := s.cache.get(key); ok {
		s.metrics.ObserveCache(true)
		resp := *cached
		resp.RequestID = id
		resp.Cached = true
		s.writeJSON(w, http.StatusOK, resp)
		return
	}
	if s.cache != nil {
		s.metrics.ObserveCache(false)
	}

	solver, err := s.factory.Get(req.Strategy)
	if err != nil {
		s.writeError(w, id, http.StatusBadRequest, err)
		return
	}
	trace, err := lcs.ParseTrace(req.Trace)
	if err != nil {
		s.writeError(w, id, http.StatusBadRequest, err)
		return
	}
	alphabet := lcs.ParseAlphabet(req.Alphabet)
	pair := lcs.Pair{A: lcs.Sequence(req.A), B: lcs.Sequence(req.B)}
	opts := lcs.Options{
		Alphabet:  alphabet,
		Workers:   req.Workers,
		Processes: req.Processes,
		Trace:     trace,
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()
	res, err := solver.Solve(ctx, nil, 0, pair, opts)
	if err != nil {
		s.writeError(w, id, statusFor(err), err)
		return
	}
	cells := int64(res.M) * int64(res.N)
	s.metrics.ObserveFill(res.Strategy, cells, res.Elapsed)
	s.logger.Debug("lcs computed",
		logging.String("request_id", id),
		logging.String("strategy", res.Strategy),
		logging.Int64("cells", cells),
		logging.Int("length", res.Length),
		logging.Duration("fill", res.Elapsed))

	resp := Response{
		RequestID: id,
		Strategy:  res.Strategy,
		Workers:   res.Workers,
		M:         res.M,
		N:         res.N,
		Length:    res.Length,
		LCS:       res.LCS,
		ElapsedMS: float64(res.Elapsed.Microseconds()) / 1000,
	}
	s.cache.put(key, &resp)
	s.writeJSON(w, http.StatusOK, resp)
}

// normalize fills request defaults and enforces the size limits.
func (s *Server) normalize(req *Request) error {
	if req.Strategy == "" {
		req.Strategy = lcs.StrategyWavefront
	}
	if req.Trace == "" {
		req.Trace = lcs.TraceTags.String()
	}
	if req.Alphabet == "" {
		req.Alphabet = "dna"
	}
	if req.Workers < 0 || req.Processes < 0 {
		return apperrors.ValidationError{Field: "workers", Message: "must not be negative"}
	}
	if limit := s.security.MaxWorkers; limit > 0 && (req.Workers > limit || req.Processes > limit) {
		return apperrors.ValidationError{Field: "workers", Message: fmt.Sprintf("workers and processes are limited to %d", limit)}
	}
	if req.Workers == 0 {
		req.Workers = s.cfg.Workers
	}
	if req.Processes == 0 {
		req.Processes = s.cfg.Processes
	}
	if limit := s.security.MaxSequenceLength; limit > 0 && (len(req.A) > limit || len(req.B) > limit) {
		return apperrors.ValidationError{Field: "a/b", Message: fmt.Sprintf("sequences are limited to %d symbols", limit)}
	}
	return nil
}

// statusFor maps an engine error to an HTTP status through its exit code.
func statusFor(err error) int {
	switch apperrors.ExitCodeFor(err) {
	case apperrors.ExitErrorInput, apperrors.ExitErrorConfig:
		return http.StatusBadRequest
	case apperrors.ExitErrorTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ExitErrorCanceled:
		return http.StatusServiceUnavailable
	case apperrors.ExitErrorPartition:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"strategies": s.factory.List()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, RequestID(r.Context()), http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, RequestID(r.Context()), http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, id string, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", err, logging.String("request_id", id))
	}
	s.writeJSON(w, code, errorResponse{RequestID: id, Error: err.Error()})
}
