package config

import (
	"time"

	"mercator-hq/budgetd/pkg/limits/budget"
)

// Config is the root configuration structure for budgetd.
type Config struct {
	// Server contains the HTTP and gRPC listener configuration.
	Server ServerConfig `yaml:"server"`

	// Budget contains the budgeting policies and maintenance settings.
	Budget BudgetConfig `yaml:"budget"`

	// Telemetry contains configuration for logging, metrics, health checks
	// and periodic reports.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Watch controls configuration file change detection.
	Watch WatchConfig `yaml:"watch"`
}

// ServerConfig contains the transport listeners.
type ServerConfig struct {
	HTTP HTTPConfig `yaml:"http"`
	GRPC GRPCConfig `yaml:"grpc"`

	// TLS applies to both listeners.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains listener TLS configuration.
type TLSConfig struct {
	// Enabled controls whether both listeners serve TLS.
	Enabled bool `yaml:"enabled"`

	// CertFile is the PEM-encoded server certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the PEM-encoded private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum protocol version: "1.2" or "1.3".
	MinVersion string `yaml:"min_version"`

	// ClientCAFile enables mutual TLS when set.
	ClientCAFile string `yaml:"client_ca_file"`

	// ClientAuth is "require", "request", or "verify_if_given". It only
	// applies when ClientCAFile is set.
	ClientAuth string `yaml:"client_auth"`

	// ReloadInterval is how often the certificate files are checked for
	// changes. Zero disables reloading.
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// ListenAddress is the address to listen on (e.g., "0.0.0.0:4433").
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown of both listeners.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will read
	// parsing the request header.
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// GRPCConfig contains gRPC server configuration.
type GRPCConfig struct {
	// Enabled starts the gRPC listener.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address to listen on (e.g., "0.0.0.0:4434").
	ListenAddress string `yaml:"listen_address"`

	// Reflection registers the gRPC server reflection service.
	Reflection bool `yaml:"reflection"`
}

// BudgetConfig contains the budgeting engine configuration.
type BudgetConfig struct {
	// MaintenanceInterval is how often the clock is refreshed and stale
	// records are evicted.
	MaintenanceInterval time.Duration `yaml:"maintenance_interval"`

	// Policies lists the named budgeting policies, registered in order.
	Policies []PolicyConfig `yaml:"policies"`
}

// PolicyConfig describes one named budgeting policy.
type PolicyConfig struct {
	// Name identifies the policy in requests.
	Name string `yaml:"name"`

	// Debounce is how long a decision is frozen after it changes.
	Debounce time.Duration `yaml:"debounce"`

	// Window is the length of the sliding window.
	Window time.Duration `yaml:"window"`

	// Bucket is the bucket width. Window must be a multiple of it.
	Bucket time.Duration `yaml:"bucket"`

	// AllowedBudget is the threshold a tenant must exceed to be throttled.
	AllowedBudget float64 `yaml:"allowed_budget"`

	// Normalization is "rate" (budget per second) or "total" (budget per window).
	Normalization string `yaml:"normalization"`
}

// BudgetConfig converts the policy into the engine's parameters.
func (p PolicyConfig) BudgetConfig() (budget.Config, error) {
	mode, err := budget.ParseNormalization(p.Normalization)
	if err != nil {
		return budget.Config{}, err
	}
	return budget.Config{
		Debounce:      p.Debounce,
		Window:        p.Window,
		Bucket:        p.Bucket,
		AllowedBudget: p.AllowedBudget,
		Normalization: mode,
	}, nil
}

// Policy builds and validates the engine policy.
func (p PolicyConfig) Policy() (*budget.Policy, error) {
	cfg, err := p.BudgetConfig()
	if err != nil {
		return nil, err
	}
	return budget.NewPolicy(cfg)
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`

	// Report contains the periodic registry summary configuration.
	Report ReportConfig `yaml:"report"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	Enabled bool `yaml:"enabled"`

	// Exporter selects the span exporter: "otlp" or "stdout".
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP collector address (host:port).
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds a single export.
	Timeout time.Duration `yaml:"timeout"`

	// Sampler is one of "always", "never" or "ratio".
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of root spans kept by the "ratio" sampler.
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `yaml:"service_name"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	Format string `yaml:"format"`

	// AddSource includes the source file and line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether Prometheus metrics are collected and served.
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path the metrics are served on.
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health endpoints are served.
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the HTTP path for the liveness probe.
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the HTTP path for the readiness probe.
	ReadinessPath string `yaml:"readiness_path"`

	// MaintenanceStaleAfter marks the process unready when the maintenance
	// loop has not completed a pass for this long.
	MaintenanceStaleAfter time.Duration `yaml:"maintenance_stale_after"`
}

// ReportConfig contains the summary reporter configuration.
type ReportConfig struct {
	// Schedule is a cron expression or descriptor. Empty disables reports.
	Schedule string `yaml:"schedule"`
}

// WatchConfig controls configuration file change detection.
type WatchConfig struct {
	// Enabled starts the configuration file watcher.
	Enabled bool `yaml:"enabled"`

	// Debounce coalesces bursts of file events.
	Debounce time.Duration `yaml:"debounce"`
}
