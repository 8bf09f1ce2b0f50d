package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/budgetd/pkg/limits/budget"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.http.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateBudget(&cfg.Budget)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry, cfg.Budget.MaintenanceInterval)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates listener configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.HTTP.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.http.listen_address",
			Message: "listen address is required",
		})
	}

	timeouts := []struct {
		field string
		value time.Duration
	}{
		{"server.http.read_timeout", cfg.HTTP.ReadTimeout},
		{"server.http.write_timeout", cfg.HTTP.WriteTimeout},
		{"server.http.idle_timeout", cfg.HTTP.IdleTimeout},
		{"server.http.shutdown_timeout", cfg.HTTP.ShutdownTimeout},
	}
	for _, to := range timeouts {
		if to.value < 0 {
			errs = append(errs, FieldError{
				Field:   to.field,
				Message: "timeout must not be negative",
			})
		}
	}

	if cfg.HTTP.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.http.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}

	if cfg.GRPC.Enabled {
		if cfg.GRPC.ListenAddress == "" {
			errs = append(errs, FieldError{
				Field:   "server.grpc.listen_address",
				Message: "listen address is required when gRPC is enabled",
			})
		} else if cfg.GRPC.ListenAddress == cfg.HTTP.ListenAddress {
			errs = append(errs, FieldError{
				Field:   "server.grpc.listen_address",
				Message: "must differ from server.http.listen_address",
			})
		}
	}

	errs = append(errs, validateTLS(&cfg.TLS)...)

	return errs
}

// validateTLS validates listener TLS settings. File contents are checked
// when the listeners are built.
func validateTLS(cfg *TLSConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	if cfg.CertFile == "" {
		errs = append(errs, FieldError{Field: "server.tls.cert_file", Message: "cert_file is required when TLS is enabled"})
	}
	if cfg.KeyFile == "" {
		errs = append(errs, FieldError{Field: "server.tls.key_file", Message: "key_file is required when TLS is enabled"})
	}

	switch cfg.MinVersion {
	case "1.2", "1.3":
	default:
		errs = append(errs, FieldError{
			Field:   "server.tls.min_version",
			Message: fmt.Sprintf("unsupported TLS version %q (must be 1.2 or 1.3)", cfg.MinVersion),
		})
	}

	if cfg.ClientCAFile != "" {
		switch cfg.ClientAuth {
		case "require", "request", "verify_if_given":
		default:
			errs = append(errs, FieldError{
				Field:   "server.tls.client_auth",
				Message: fmt.Sprintf("invalid client auth %q (must be require, request, or verify_if_given)", cfg.ClientAuth),
			})
		}
	}

	if cfg.ReloadInterval < 0 {
		errs = append(errs, FieldError{Field: "server.tls.reload_interval", Message: "reload interval must not be negative"})
	}

	return errs
}

// validateBudget validates the maintenance settings and every policy.
func validateBudget(cfg *BudgetConfig) []FieldError {
	var errs []FieldError

	if cfg.MaintenanceInterval <= 0 {
		errs = append(errs, FieldError{
			Field:   "budget.maintenance_interval",
			Message: "maintenance interval must be positive",
		})
	}

	if len(cfg.Policies) == 0 {
		errs = append(errs, FieldError{
			Field:   "budget.policies",
			Message: "at least one policy is required",
		})
	}

	seen := make(map[string]int, len(cfg.Policies))
	for i, p := range cfg.Policies {
		prefix := fmt.Sprintf("budget.policies[%d]", i)

		if p.Name == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: "policy name is required",
			})
		} else if first, dup := seen[p.Name]; dup {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate policy name %q (first defined at index %d)", p.Name, first),
			})
		} else {
			seen[p.Name] = i
		}

		if _, err := p.Policy(); err != nil {
			var perr *budget.PolicyError
			if errors.As(err, &perr) {
				errs = append(errs, FieldError{
					Field:   prefix + "." + perr.Field,
					Message: perr.Message,
				})
			} else {
				errs = append(errs, FieldError{Field: prefix, Message: err.Error()})
			}
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig, maintenance time.Duration) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json or text)", cfg.Logging.Format),
		})
	}

	paths := []struct {
		field   string
		value   string
		enabled bool
	}{
		{"telemetry.metrics.path", cfg.Metrics.Path, cfg.Metrics.Enabled},
		{"telemetry.health.liveness_path", cfg.Health.LivenessPath, cfg.Health.Enabled},
		{"telemetry.health.readiness_path", cfg.Health.ReadinessPath, cfg.Health.Enabled},
	}
	for _, p := range paths {
		if p.enabled && !strings.HasPrefix(p.value, "/") {
			errs = append(errs, FieldError{
				Field:   p.field,
				Message: fmt.Sprintf("path %q must start with /", p.value),
			})
		}
	}

	if cfg.Health.Enabled && cfg.Health.MaintenanceStaleAfter <= maintenance {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.maintenance_stale_after",
			Message: "must be longer than budget.maintenance_interval",
		})
	}

	if cfg.Report.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Report.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.report.schedule",
				Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.Report.Schedule, err),
			})
		}
	}

	errs = append(errs, validateTracing(&cfg.Tracing)...)

	return errs
}

// validateTracing validates tracing configuration. Nothing is checked while
// tracing is disabled.
func validateTracing(cfg *TracingConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	switch strings.ToLower(cfg.Exporter) {
	case "otlp":
		if cfg.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required for the otlp exporter",
			})
		}
	case "stdout":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.exporter",
			Message: fmt.Sprintf("invalid exporter %q (must be otlp or stdout)", cfg.Exporter),
		})
	}

	switch strings.ToLower(cfg.Sampler) {
	case "always", "never":
	case "ratio":
		if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: fmt.Sprintf("sample ratio %v must be within [0, 1]", cfg.SampleRatio),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q (must be always, never, or ratio)", cfg.Sampler),
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.timeout",
			Message: "timeout must not be negative",
		})
	}

	return errs
}

// validateWatch validates watcher configuration.
func validateWatch(cfg *WatchConfig) []FieldError {
	if cfg.Debounce < 0 {
		return []FieldError{{
			Field:   "watch.debounce",
			Message: "debounce must not be negative",
		}}
	}
	return nil
}
