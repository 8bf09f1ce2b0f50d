package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"mercator-hq/budgetd/pkg/api"
	"mercator-hq/budgetd/pkg/config"
	"mercator-hq/budgetd/pkg/telemetry/health"
	"mercator-hq/budgetd/pkg/telemetry/metrics"
	"mercator-hq/budgetd/pkg/telemetry/tracing"
)

// Server is the HTTP+JSON transport.
type Server struct {
	config  *config.HTTPConfig
	budgets api.Budgets
	logger  *slog.Logger

	health       *health.Checker
	healthConfig *config.HealthConfig
	metrics      *metrics.Collector
	metricsPath  string
	tracer       *tracing.Tracer
	tlsConfig    *tls.Config
	version      health.VersionInfo

	httpServer   *http.Server
	listener     net.Listener
	ready        chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHealth serves the checker's probes when cfg.Enabled.
func WithHealth(checker *health.Checker, cfg *config.HealthConfig) Option {
	return func(s *Server) {
		if cfg != nil && cfg.Enabled {
			s.health = checker
			s.healthConfig = cfg
		}
	}
}

// WithMetrics records request metrics on collector and serves it on
// cfg.Path when metrics are enabled.
func WithMetrics(collector *metrics.Collector, cfg *config.MetricsConfig) Option {
	return func(s *Server) {
		s.metrics = collector
		if cfg != nil && cfg.Enabled {
			s.metricsPath = cfg.Path
		}
	}
}

// WithTracer records a server span per request.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithTLS serves HTTPS with cfg. A nil cfg serves plaintext.
func WithTLS(cfg *tls.Config) Option {
	return func(s *Server) {
		s.tlsConfig = cfg
	}
}

// WithVersion sets the build information served on /version.
func WithVersion(info health.VersionInfo) Option {
	return func(s *Server) {
		s.version = info
	}
}

// New creates an HTTP server serving budgets.
func New(cfg *config.HTTPConfig, budgets api.Budgets, opts ...Option) *Server {
	s := &Server{
		config:  cfg,
		budgets: budgets,
		logger:  slog.Default(),
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "http")
	return s
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	listener, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.mu.Unlock()
	close(s.ready)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "address", listener.Addr().String(), "tls", s.tlsConfig != nil)
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		httpServer := s.httpServer
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("http server stopped")
	})

	return shutdownErr
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.ListenAddress
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Outermost first.
	r.Use(recoveryMiddleware(s.logger))
	r.Use(requestIDMiddleware)
	r.Use(tracingMiddleware(s.tracer))
	r.Use(loggingMiddleware(s.logger))
	r.Use(metricsMiddleware(s.metrics))

	r.Post("/record_spending", s.handleRecordSpending)
	r.Post("/exceeds_budget", s.handleExceedsBudget)

	if s.health != nil {
		r.Get(s.healthConfig.LivenessPath, s.health.LivenessHandler())
		r.Get(s.healthConfig.ReadinessPath, s.health.ReadinessHandler())
	}
	if s.metrics != nil && s.metricsPath != "" {
		r.Handle(s.metricsPath, s.metrics.Handler())
	}
	r.Get("/version", health.VersionHandler(s.version.Version, s.version.Commit, s.version.BuildTime))

	return r
}
