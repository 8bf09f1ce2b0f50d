package config

import "time"

// Default values for configuration fields.
const (
	// HTTP defaults
	DefaultListenAddress   = "0.0.0.0:4433"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// gRPC defaults
	DefaultGRPCEnabled       = true
	DefaultGRPCListenAddress = "0.0.0.0:4434"
	DefaultGRPCReflection    = false

	// TLS defaults
	DefaultTLSMinVersion     = "1.3"
	DefaultTLSClientAuth     = "require"
	DefaultTLSReloadInterval = 5 * time.Minute

	// Budget defaults
	DefaultMaintenanceInterval = 500 * time.Millisecond
	DefaultPolicyDebounce      = 5 * time.Minute
	DefaultPolicyWindow        = 2 * time.Minute
	DefaultPolicyBucket        = 10 * time.Second
	DefaultNormalization       = "rate"

	// Telemetry defaults
	DefaultLoggingLevel          = "info"
	DefaultLoggingFormat         = "json"
	DefaultMetricsEnabled        = true
	DefaultPrometheusPath        = "/metrics"
	DefaultMetricsNamespace      = "budgetd"
	DefaultHealthEnabled         = true
	DefaultLivenessPath          = "/health/live"
	DefaultReadinessPath         = "/health/ready"
	DefaultMaintenanceStaleAfter = 10 * time.Second
	DefaultReportSchedule        = "@every 1m"
	DefaultTracingEnabled        = false
	DefaultTracingExporter       = "otlp"
	DefaultTracingEndpoint       = "localhost:4317"
	DefaultTracingTimeout        = 10 * time.Second
	DefaultTracingSampler        = "always"
	DefaultTracingSampleRatio    = 1.0
	DefaultTracingServiceName    = "budgetd"

	// Watch defaults
	DefaultWatchEnabled  = false
	DefaultWatchDebounce = 100 * time.Millisecond
)

// DefaultPolicies returns the built-in policies used when none are
// configured.
func DefaultPolicies() []PolicyConfig {
	policy := func(name string, allowed float64) PolicyConfig {
		return PolicyConfig{
			Name:          name,
			Debounce:      DefaultPolicyDebounce,
			Window:        DefaultPolicyWindow,
			Bucket:        DefaultPolicyBucket,
			AllowedBudget: allowed,
			Normalization: DefaultNormalization,
		}
	}
	return []PolicyConfig{
		policy("symbolication-native", 5.0),
		policy("symbolication-js", 5.0),
		policy("symbolication-jvm", 7.5),
	}
}

// DefaultConfig returns a configuration with every field set to its default.
// YAML is decoded on top of it, so boolean defaults survive absent keys.
func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			GRPC: GRPCConfig{
				Enabled:    DefaultGRPCEnabled,
				Reflection: DefaultGRPCReflection,
			},
			TLS: TLSConfig{ReloadInterval: DefaultTLSReloadInterval},
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Health:  HealthConfig{Enabled: DefaultHealthEnabled},
			Report:  ReportConfig{Schedule: DefaultReportSchedule},
			Tracing: TracingConfig{
				Enabled:     DefaultTracingEnabled,
				SampleRatio: DefaultTracingSampleRatio,
			},
		},
		Watch: WatchConfig{Enabled: DefaultWatchEnabled},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any configuration fields that are
// zero-valued. Boolean fields cannot be told apart from an explicit false
// here; DefaultConfig covers them.
//
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// HTTP defaults
	http := &cfg.Server.HTTP
	if http.ListenAddress == "" {
		http.ListenAddress = DefaultListenAddress
	}
	if http.ReadTimeout == 0 {
		http.ReadTimeout = DefaultReadTimeout
	}
	if http.WriteTimeout == 0 {
		http.WriteTimeout = DefaultWriteTimeout
	}
	if http.IdleTimeout == 0 {
		http.IdleTimeout = DefaultIdleTimeout
	}
	if http.ShutdownTimeout == 0 {
		http.ShutdownTimeout = DefaultShutdownTimeout
	}
	if http.MaxHeaderBytes == 0 {
		http.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// gRPC defaults
	if cfg.Server.GRPC.ListenAddress == "" {
		cfg.Server.GRPC.ListenAddress = DefaultGRPCListenAddress
	}

	// TLS defaults
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ClientAuth == "" {
		cfg.Server.TLS.ClientAuth = DefaultTLSClientAuth
	}

	// Budget defaults
	if cfg.Budget.MaintenanceInterval == 0 {
		cfg.Budget.MaintenanceInterval = DefaultMaintenanceInterval
	}
	if len(cfg.Budget.Policies) == 0 {
		cfg.Budget.Policies = DefaultPolicies()
	}
	for i := range cfg.Budget.Policies {
		if cfg.Budget.Policies[i].Normalization == "" {
			cfg.Budget.Policies[i].Normalization = DefaultNormalization
		}
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.MaintenanceStaleAfter == 0 {
		cfg.Telemetry.Health.MaintenanceStaleAfter = DefaultMaintenanceStaleAfter
	}

	tracing := &cfg.Telemetry.Tracing
	if tracing.Exporter == "" {
		tracing.Exporter = DefaultTracingExporter
	}
	if tracing.Endpoint == "" {
		tracing.Endpoint = DefaultTracingEndpoint
	}
	if tracing.Timeout == 0 {
		tracing.Timeout = DefaultTracingTimeout
	}
	if tracing.Sampler == "" {
		tracing.Sampler = DefaultTracingSampler
	}
	if tracing.ServiceName == "" {
		tracing.ServiceName = DefaultTracingServiceName
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}
