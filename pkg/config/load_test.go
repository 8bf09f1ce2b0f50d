package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/budgetd/pkg/limits/budget"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budgetd.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    listen_address: "127.0.0.1:9000"
    read_timeout: "5s"
  grpc:
    enabled: false

budget:
  maintenance_interval: "250ms"
  policies:
    - name: "uploads"
      debounce: "1m"
      window: "30s"
      bucket: "5s"
      allowed_budget: 12.5
    - name: "exports"
      debounce: "10s"
      window: "5s"
      bucket: "1s"
      allowed_budget: 100
      normalization: "total"

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.HTTP.ListenAddress != "127.0.0.1:9000" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:9000", cfg.Server.HTTP.ListenAddress)
	}
	if cfg.Server.HTTP.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout 5s, got %v", cfg.Server.HTTP.ReadTimeout)
	}
	if cfg.Server.HTTP.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("expected default write timeout, got %v", cfg.Server.HTTP.WriteTimeout)
	}
	if cfg.Server.GRPC.Enabled {
		t.Error("expected gRPC to be disabled")
	}
	if cfg.Budget.MaintenanceInterval != 250*time.Millisecond {
		t.Errorf("expected maintenance interval 250ms, got %v", cfg.Budget.MaintenanceInterval)
	}

	if len(cfg.Budget.Policies) != 2 {
		t.Fatalf("expected 2 policies, got %d", len(cfg.Budget.Policies))
	}
	uploads := cfg.Budget.Policies[0]
	if uploads.Name != "uploads" || uploads.AllowedBudget != 12.5 || uploads.Normalization != "rate" {
		t.Errorf("unexpected uploads policy: %+v", uploads)
	}

	p, err := cfg.Budget.Policies[1].Policy()
	if err != nil {
		t.Fatalf("failed to build exports policy: %v", err)
	}
	if p.Normalization() != budget.NormalizeTotal {
		t.Errorf("expected total normalization, got %s", p.Normalization())
	}
	if p.BucketCount() != 5 {
		t.Errorf("expected 5 buckets, got %d", p.BucketCount())
	}

	// Booleans absent from the file keep their defaults.
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to stay enabled by default")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("failed to load empty config: %v", err)
	}

	if cfg.Server.HTTP.ListenAddress != DefaultListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Server.HTTP.ListenAddress)
	}
	if !cfg.Server.GRPC.Enabled {
		t.Error("expected gRPC enabled by default")
	}

	want := []string{"symbolication-native", "symbolication-js", "symbolication-jvm"}
	if len(cfg.Budget.Policies) != len(want) {
		t.Fatalf("expected %d default policies, got %d", len(want), len(cfg.Budget.Policies))
	}
	for i, name := range want {
		if cfg.Budget.Policies[i].Name != name {
			t.Errorf("policy %d: expected %q, got %q", i, name, cfg.Budget.Policies[i].Name)
		}
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read configuration file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "server: [unclosed"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse configuration file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfig_InvalidPolicy(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
budget:
  policies:
    - name: "odd"
      window: "25s"
      bucket: "10s"
      allowed_budget: 1
`))
	if err == nil {
		t.Fatal("expected error for window that is not a multiple of bucket")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Errors[0].Field != "budget.policies[0].window" {
		t.Errorf("expected field budget.policies[0].window, got %q", verr.Errors[0].Field)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    listen_address: "127.0.0.1:9000"
`)

	t.Setenv("BUDGETD_SERVER_HTTP_LISTEN_ADDRESS", "127.0.0.1:9100")
	t.Setenv("BUDGETD_SERVER_GRPC_ENABLED", "false")
	t.Setenv("BUDGETD_BUDGET_MAINTENANCE_INTERVAL", "1s")
	t.Setenv("BUDGETD_TELEMETRY_LOGGING_FORMAT", "text")
	t.Setenv("BUDGETD_SERVER_HTTP_MAX_HEADER_BYTES", "4096")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.HTTP.ListenAddress != "127.0.0.1:9100" {
		t.Errorf("expected env listen address, got %q", cfg.Server.HTTP.ListenAddress)
	}
	if cfg.Server.GRPC.Enabled {
		t.Error("expected env to disable gRPC")
	}
	if cfg.Budget.MaintenanceInterval != time.Second {
		t.Errorf("expected maintenance interval 1s, got %v", cfg.Budget.MaintenanceInterval)
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("expected text format, got %q", cfg.Telemetry.Logging.Format)
	}
	if cfg.Server.HTTP.MaxHeaderBytes != 4096 {
		t.Errorf("expected max header bytes 4096, got %d", cfg.Server.HTTP.MaxHeaderBytes)
	}
}

func TestLoadConfigWithEnvOverrides_MalformedValue(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("BUDGETD_BUDGET_MAINTENANCE_INTERVAL", "soon")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected malformed duration to be rejected")
	}
	if !strings.Contains(err.Error(), "BUDGETD_BUDGET_MAINTENANCE_INTERVAL") {
		t.Errorf("expected error to name the variable, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides_DotEnv(t *testing.T) {
	path := writeConfig(t, "")
	dotenv := filepath.Join(filepath.Dir(path), ".env")
	content := "BUDGETD_TELEMETRY_LOGGING_LEVEL=warn\nBUDGETD_TELEMETRY_REPORT_SCHEDULE=\"@every 5m\"\n"
	if err := os.WriteFile(dotenv, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("BUDGETD_TELEMETRY_LOGGING_LEVEL")
		os.Unsetenv("BUDGETD_TELEMETRY_REPORT_SCHEDULE")
	})

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected level from .env, got %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Report.Schedule != "@every 5m" {
		t.Errorf("expected schedule from .env, got %q", cfg.Telemetry.Report.Schedule)
	}
}

func TestLoadDefaultsWithEnvOverrides(t *testing.T) {
	t.Setenv("BUDGETD_SERVER_GRPC_LISTEN_ADDRESS", "127.0.0.1:9200")

	cfg, err := LoadDefaultsWithEnvOverrides()
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}

	if cfg.Server.GRPC.ListenAddress != "127.0.0.1:9200" {
		t.Errorf("expected env gRPC address, got %q", cfg.Server.GRPC.ListenAddress)
	}
	if len(cfg.Budget.Policies) != len(DefaultPolicies()) {
		t.Errorf("expected %d built-in policies, got %d", len(DefaultPolicies()), len(cfg.Budget.Policies))
	}
}

func TestLoadConfigWithEnvOverrides_Tracing(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("BUDGETD_TELEMETRY_TRACING_ENABLED", "true")
	t.Setenv("BUDGETD_TELEMETRY_TRACING_EXPORTER", "stdout")
	t.Setenv("BUDGETD_TELEMETRY_TRACING_SAMPLER", "ratio")
	t.Setenv("BUDGETD_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	tracing := cfg.Telemetry.Tracing
	if !tracing.Enabled || tracing.Exporter != "stdout" || tracing.Sampler != "ratio" {
		t.Errorf("unexpected tracing config: %+v", tracing)
	}
	if tracing.SampleRatio != 0.25 {
		t.Errorf("expected sample ratio 0.25, got %v", tracing.SampleRatio)
	}

	t.Setenv("BUDGETD_TELEMETRY_TRACING_SAMPLE_RATIO", "half")
	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Error("expected malformed sample ratio to be rejected")
	}
}
