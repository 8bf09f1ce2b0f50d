package main

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/budgetd/pkg/config"
	"mercator-hq/budgetd/pkg/rpc"
	"mercator-hq/budgetd/pkg/security/tls/tlstest"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server.HTTP.ListenAddress = "127.0.0.1:0"
	cfg.Server.HTTP.ShutdownTimeout = time.Second
	cfg.Server.GRPC.ListenAddress = "127.0.0.1:0"
	cfg.Telemetry.Report.Schedule = ""
	cfg.Budget.MaintenanceInterval = 10 * time.Millisecond
	return cfg
}

func waitReady(t *testing.T, ready <-chan struct{}, done <-chan error) {
	t.Helper()
	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("daemon exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("component did not become ready")
	}
}

func TestNewRegistry_RegistersPoliciesInOrder(t *testing.T) {
	registry, err := newRegistry(testConfig(), discardLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"symbolication-native", "symbolication-js", "symbolication-jvm"}, registry.Policies())
}

func TestNewRegistry_InvalidPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Budget.Policies[1].Bucket = 7 * time.Second

	_, err := newRegistry(cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbolication-js")
}

func TestNewDaemon_InvalidTracing(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.Tracing.Enabled = true
	cfg.Telemetry.Tracing.Exporter = "zipkin"

	_, err := newDaemon(cfg, "", discardLogger())
	assert.Error(t, err)
}

func TestNewDaemon_TLS(t *testing.T) {
	bundle := tlstest.New(t, t.TempDir())
	cfg := testConfig()
	cfg.Server.TLS.Enabled = true
	cfg.Server.TLS.CertFile = bundle.ServerCert
	cfg.Server.TLS.KeyFile = bundle.ServerKey

	d, err := newDaemon(cfg, "", discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, d.certs)
	assert.Equal(t, []string{"maintenance", "tls"}, d.checker.ListChecks())

	cfg.Server.TLS.KeyFile = bundle.ServerKey + ".missing"
	_, err = newDaemon(cfg, "", discardLogger())
	assert.ErrorContains(t, err, "server.tls")
}

func TestDaemon_ServesBothTransports(t *testing.T) {
	d, err := newDaemon(testConfig(), "", discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.run(ctx) }()

	waitReady(t, d.http.Ready(), done)
	waitReady(t, d.grpc.Ready(), done)

	resp, err := http.Post("http://"+d.http.Addr()+"/record_spending", "application/json",
		strings.NewReader(`{"config_name":"symbolication-js","project_id":7,"spent":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	client, err := rpc.Dial(d.grpc.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.ExceedsBudget(context.Background(), "symbolication-js", 7)
	require.NoError(t, err)
	assert.Equal(t, 1, d.registry.Len())

	resp, err = http.Get("http://" + d.http.Addr() + "/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestDaemon_GRPCDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Server.GRPC.Enabled = false

	d, err := newDaemon(cfg, "", discardLogger())
	require.NoError(t, err)
	assert.Nil(t, d.grpc)
}

func TestDaemon_ComponentFailureStopsAll(t *testing.T) {
	cfg := testConfig()
	cfg.Server.HTTP.ListenAddress = "not-an-address"

	d, err := newDaemon(cfg, "", discardLogger())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- d.run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop after a component failed")
	}
}

func TestDaemon_WatcherRegistersConfigCheck(t *testing.T) {
	cfg := testConfig()
	cfg.Watch.Enabled = true

	d, err := newDaemon(cfg, t.TempDir()+"/config.yaml", discardLogger())
	require.NoError(t, err)

	require.NotNil(t, d.watcher)
	assert.Equal(t, []string{"config", "maintenance"}, d.checker.ListChecks())
}
