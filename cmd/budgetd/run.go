package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/budgetd/pkg/cli"
	"mercator-hq/budgetd/pkg/config"
	"mercator-hq/budgetd/pkg/limits"
	"mercator-hq/budgetd/pkg/rpc"
	sectls "mercator-hq/budgetd/pkg/security/tls"
	"mercator-hq/budgetd/pkg/server"
	"mercator-hq/budgetd/pkg/telemetry/health"
	"mercator-hq/budgetd/pkg/telemetry/logging"
	"mercator-hq/budgetd/pkg/telemetry/metrics"
	"mercator-hq/budgetd/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	grpcAddress   string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the budgetd server",
	Long: `Start the budgetd server with the specified configuration.

The server registers the configured policies, starts the maintenance loop
that refreshes the clock and evicts idle projects, and serves the budget
operations over HTTP+JSON and gRPC until interrupted.

Examples:
  # Start with the built-in policies
  budgetd run

  # Start with custom config
  budgetd run --config /etc/budgetd/config.yaml

  # Override listen addresses
  budgetd run --listen 0.0.0.0:8080 --grpc-listen 0.0.0.0:8081

  # Validate config without starting server
  budgetd run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override HTTP listen address")
	runCmd.Flags().StringVar(&runFlags.grpcAddress, "grpc-listen", "", "override gRPC listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, fromFile, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.HTTP.ListenAddress = runFlags.listenAddress
	}
	if runFlags.grpcAddress != "" {
		cfg.Server.GRPC.ListenAddress = runFlags.grpcAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	cfg.Telemetry.Logging.Level = debugLevel(cfg.Telemetry.Logging.Level)
	config.SetConfig(cfg)

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	watchPath := ""
	if fromFile {
		watchPath = cfgFile
	}
	d, err := newDaemon(cfg, watchPath, logger)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	printBanner(cmd.OutOrStdout(), cfg, fromFile)

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	if err := d.run(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Server stopped")
	return nil
}

// daemon holds the long-running components of budgetd run.
type daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *limits.Registry
	reporter *limits.Reporter
	checker  *health.Checker
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	certs    *sectls.CertificateReloader
	http     *server.Server
	grpc     *rpc.Server
	watcher  *config.Watcher
}

// newDaemon builds every component from cfg. watchPath is the file to
// watch, if any.
func newDaemon(cfg *config.Config, watchPath string, logger *slog.Logger) (*daemon, error) {
	d := &daemon{
		cfg:     cfg,
		logger:  logger,
		checker: health.New(0),
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithVersion(Version))
	if err != nil {
		return nil, err
	}
	d.tracer = tracer

	registry, err := newRegistry(cfg, logger, limits.WithObserver(d.metrics.Budget()))
	if err != nil {
		_ = tracer.Shutdown(context.Background())
		return nil, err
	}
	d.registry = registry
	d.reporter = limits.NewReporter(registry, cfg.Telemetry.Report.Schedule)

	staleAfter := cfg.Telemetry.Health.MaintenanceStaleAfter
	d.checker.RegisterCheck("maintenance", func(ctx context.Context) error {
		return registry.CheckMaintenance(ctx, staleAfter)
	})

	if cfg.Watch.Enabled && watchPath != "" {
		d.watcher = config.NewWatcher(watchPath, cfg, cfg.Watch.Debounce, logger)
		d.checker.RegisterInformational("config", d.watcher.Check)
	}

	var serverTLS *tls.Config
	if cfg.Server.TLS.Enabled {
		d.certs = sectls.NewCertificateReloader(&cfg.Server.TLS, logger)
		if err := d.certs.Load(); err != nil {
			_ = tracer.Shutdown(context.Background())
			return nil, fmt.Errorf("server.tls: %w", err)
		}
		serverTLS, err = sectls.ServerConfig(&cfg.Server.TLS, d.certs)
		if err != nil {
			_ = tracer.Shutdown(context.Background())
			return nil, fmt.Errorf("server.tls: %w", err)
		}
		d.checker.RegisterCheck("tls", d.certs.Check)
	}

	d.http = server.New(&cfg.Server.HTTP, registry,
		server.WithLogger(logger),
		server.WithHealth(d.checker, &cfg.Telemetry.Health),
		server.WithMetrics(d.metrics, &cfg.Telemetry.Metrics),
		server.WithTracer(tracer),
		server.WithTLS(serverTLS),
		server.WithVersion(versionInfo()),
	)

	if cfg.Server.GRPC.Enabled {
		d.grpc = rpc.New(&cfg.Server.GRPC, cfg.Server.HTTP.ShutdownTimeout, registry,
			rpc.WithLogger(logger),
			rpc.WithMetrics(d.metrics),
			rpc.WithTracer(tracer),
			rpc.WithTLS(serverTLS),
		)
	}

	return d, nil
}

// newRegistry registers cfg's policies in order.
func newRegistry(cfg *config.Config, logger *slog.Logger, opts ...limits.Option) (*limits.Registry, error) {
	opts = append([]limits.Option{
		limits.WithLogger(logger),
		limits.WithMaintenanceInterval(cfg.Budget.MaintenanceInterval),
	}, opts...)
	registry := limits.NewRegistry(opts...)

	for i, pc := range cfg.Budget.Policies {
		policy, err := pc.Policy()
		if err != nil {
			return nil, fmt.Errorf("budget.policies[%d] (%s): %w", i, pc.Name, err)
		}
		registry.AddPolicy(pc.Name, policy)
	}
	return registry, nil
}

// run serves until ctx is cancelled or a component fails. A failing
// component stops all others.
func (d *daemon) run(ctx context.Context) error {
	defer d.shutdownTracer()

	g, ctx := errgroup.WithContext(ctx)

	if err := d.reporter.Start(ctx); err != nil {
		return err
	}
	defer d.reporter.Stop()

	g.Go(func() error {
		return d.registry.Run(ctx)
	})

	g.Go(func() error {
		return d.http.Start(ctx)
	})

	if d.grpc != nil {
		g.Go(func() error {
			return d.grpc.Start(ctx)
		})
	}

	if d.watcher != nil {
		g.Go(func() error {
			return d.watcher.Run(ctx)
		})
	}

	if d.certs != nil {
		g.Go(func() error {
			return d.certs.Run(ctx)
		})
	}

	d.logger.Info("budgetd started",
		"version", Version,
		"policies", d.registry.Policies(),
		"grpc_enabled", d.grpc != nil,
		"tracing_enabled", d.tracer.Enabled(),
		"tls_enabled", d.certs != nil,
	)

	return g.Wait()
}

// shutdownTracer flushes buffered spans within the HTTP shutdown timeout.
func (d *daemon) shutdownTracer() {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Server.HTTP.ShutdownTimeout)
	defer cancel()
	if err := d.tracer.Shutdown(ctx); err != nil {
		d.logger.Warn("failed to flush traces", "error", err)
	}
}

func printBanner(w io.Writer, cfg *config.Config, fromFile bool) {
	fmt.Fprintf(w, "budgetd v%s\n", Version)
	if fromFile {
		fmt.Fprintf(w, "✓ Configuration loaded from %s\n", cfgFile)
	} else {
		fmt.Fprintln(w, "✓ Using built-in configuration")
	}
	fmt.Fprintf(w, "✓ Policies registered (%d policies)\n", len(cfg.Budget.Policies))
	scheme := "http"
	if cfg.Server.TLS.Enabled {
		scheme = "https"
	}
	fmt.Fprintf(w, "✓ HTTP listening on %s\n", cfg.Server.HTTP.ListenAddress)
	if cfg.Server.GRPC.Enabled {
		fmt.Fprintf(w, "✓ gRPC listening on %s\n", cfg.Server.GRPC.ListenAddress)
	}
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(w, "✓ Metrics endpoint: %s://%s%s\n", scheme, cfg.Server.HTTP.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	if cfg.Telemetry.Tracing.Enabled {
		fmt.Fprintf(w, "✓ Tracing via %s exporter\n", cfg.Telemetry.Tracing.Exporter)
	}
	fmt.Fprintln(w, "\nPress Ctrl+C to stop")
}
