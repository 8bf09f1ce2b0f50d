package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "BUDGETD_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults without validating the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	// Policies from the file replace the built-in ones entirely.
	cfg.Budget.Policies = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. A .env file in the same directory as the
// configuration file is loaded into the environment first, without
// overriding variables that are already set.
//
// The loading sequence is:
// 1. Load .env next to the configuration file, if present
// 2. Load YAML from file and apply defaults
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadDefaultsWithEnvOverrides returns the built-in configuration with
// environment variable overrides applied, for running without a file.
func LoadDefaultsWithEnvOverrides() (*Config, error) {
	cfg := DefaultConfig()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads a .env file. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load environment file %q: %w", path, err)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format BUDGETD_SECTION_FIELD. Malformed
// values are reported rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs []FieldError
	env := envReader{errs: &errs}

	// Server overrides
	env.str("SERVER_HTTP_LISTEN_ADDRESS", &cfg.Server.HTTP.ListenAddress)
	env.duration("SERVER_HTTP_READ_TIMEOUT", &cfg.Server.HTTP.ReadTimeout)
	env.duration("SERVER_HTTP_WRITE_TIMEOUT", &cfg.Server.HTTP.WriteTimeout)
	env.duration("SERVER_HTTP_IDLE_TIMEOUT", &cfg.Server.HTTP.IdleTimeout)
	env.duration("SERVER_HTTP_SHUTDOWN_TIMEOUT", &cfg.Server.HTTP.ShutdownTimeout)
	env.integer("SERVER_HTTP_MAX_HEADER_BYTES", &cfg.Server.HTTP.MaxHeaderBytes)
	env.boolean("SERVER_GRPC_ENABLED", &cfg.Server.GRPC.Enabled)
	env.str("SERVER_GRPC_LISTEN_ADDRESS", &cfg.Server.GRPC.ListenAddress)
	env.boolean("SERVER_GRPC_REFLECTION", &cfg.Server.GRPC.Reflection)
	env.boolean("SERVER_TLS_ENABLED", &cfg.Server.TLS.Enabled)
	env.str("SERVER_TLS_CERT_FILE", &cfg.Server.TLS.CertFile)
	env.str("SERVER_TLS_KEY_FILE", &cfg.Server.TLS.KeyFile)
	env.str("SERVER_TLS_CLIENT_CA_FILE", &cfg.Server.TLS.ClientCAFile)

	// Budget overrides
	env.duration("BUDGET_MAINTENANCE_INTERVAL", &cfg.Budget.MaintenanceInterval)

	// Telemetry overrides
	env.str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	env.str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	env.boolean("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	env.boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	env.str("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	env.str("TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	env.boolean("TELEMETRY_HEALTH_ENABLED", &cfg.Telemetry.Health.Enabled)
	env.duration("TELEMETRY_HEALTH_MAINTENANCE_STALE_AFTER", &cfg.Telemetry.Health.MaintenanceStaleAfter)
	env.str("TELEMETRY_REPORT_SCHEDULE", &cfg.Telemetry.Report.Schedule)
	env.boolean("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	env.str("TELEMETRY_TRACING_EXPORTER", &cfg.Telemetry.Tracing.Exporter)
	env.str("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	env.boolean("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
	env.str("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	env.float("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)

	// Watch overrides
	env.boolean("WATCH_ENABLED", &cfg.Watch.Enabled)
	env.duration("WATCH_DEBOUNCE", &cfg.Watch.Debounce)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// envReader reads BUDGETD_* variables into configuration fields and
// collects parse failures.
type envReader struct {
	errs *[]FieldError
}

func (e envReader) lookup(name string) (string, bool) {
	val, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

func (e envReader) fail(name, val string, err error) {
	*e.errs = append(*e.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: fmt.Sprintf("invalid value %q: %v", val, err),
	})
}

func (e envReader) str(name string, dst *string) {
	if val, ok := e.lookup(name); ok {
		*dst = val
	}
}

func (e envReader) duration(name string, dst *time.Duration) {
	if val, ok := e.lookup(name); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = d
	}
}

func (e envReader) integer(name string, dst *int) {
	if val, ok := e.lookup(name); ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = i
	}
}

func (e envReader) float(name string, dst *float64) {
	if val, ok := e.lookup(name); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = f
	}
}

func (e envReader) boolean(name string, dst *bool) {
	if val, ok := e.lookup(name); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = b
	}
}
