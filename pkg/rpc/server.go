package rpc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"mercator-hq/budgetd/pkg/api"
	"mercator-hq/budgetd/pkg/config"
	"mercator-hq/budgetd/pkg/rpc/pb"
	"mercator-hq/budgetd/pkg/telemetry/metrics"
	"mercator-hq/budgetd/pkg/telemetry/tracing"
)

// Server manages the lifecycle of the gRPC transport.
type Server struct {
	config          *config.GRPCConfig
	shutdownTimeout time.Duration
	logger          *slog.Logger
	metrics         *metrics.Collector
	tracer          *tracing.Tracer
	tlsConfig       *tls.Config

	grpcServer *grpc.Server
	health     *health.Server

	mu        sync.RWMutex
	listener  net.Listener
	ready     chan struct{}
	readyOnce sync.Once
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

// WithMetrics records per-method call metrics on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = collector
	}
}

// WithTracer records a server span per call.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithTLS serves TLS with cfg. A nil cfg serves plaintext.
func WithTLS(cfg *tls.Config) Option {
	return func(s *Server) {
		s.tlsConfig = cfg
	}
}

// New creates a gRPC server serving budgets. shutdownTimeout bounds the
// graceful stop; after it in-flight calls are cancelled.
func New(cfg *config.GRPCConfig, shutdownTimeout time.Duration, budgets api.Budgets, opts ...Option) *Server {
	s := &Server{
		config:          cfg,
		shutdownTimeout: shutdownTimeout,
		logger:          slog.Default(),
		ready:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "grpc")

	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			requestIDInterceptor(),
			tracingInterceptor(s.tracer),
			recoveryInterceptor(s.logger),
			loggingInterceptor(s.logger),
			metricsInterceptor(s.metrics),
		),
	}
	if s.tlsConfig != nil {
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(s.tlsConfig)))
	}
	s.grpcServer = grpc.NewServer(serverOpts...)
	pb.RegisterProjectBudgetsServer(s.grpcServer, &budgetService{budgets: budgets})

	s.health = health.NewServer()
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	if cfg.Reflection {
		reflection.Register(s.grpcServer)
	}

	return s
}

// Start listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled, then stops gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting grpc server", "address", listener.Addr().String())
		if err := s.grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.Stop(context.Background())
		return nil
	case err := <-errChan:
		return err
	}
}

// Stop marks the service not serving and stops gracefully, forcing the stop
// when ctx or the shutdown timeout expires first.
func (s *Server) Stop(ctx context.Context) {
	s.health.Shutdown()

	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("grpc server stopped")
	case <-ctx.Done():
		s.logger.Warn("graceful stop timeout, forcing shutdown")
		s.grpcServer.Stop()
	}
}

// Ready is closed once the server is serving on a listener.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or the configured one before Serve.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.ListenAddress
}
