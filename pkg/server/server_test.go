package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/budgetd/pkg/api"
	"mercator-hq/budgetd/pkg/config"
	"mercator-hq/budgetd/pkg/limits"
	"mercator-hq/budgetd/pkg/limits/budget"
	sectls "mercator-hq/budgetd/pkg/security/tls"
	"mercator-hq/budgetd/pkg/security/tls/tlstest"
	"mercator-hq/budgetd/pkg/telemetry/health"
	"mercator-hq/budgetd/pkg/telemetry/metrics"
	"mercator-hq/budgetd/pkg/telemetry/tracing"
)

func newTestRegistry(t *testing.T) *limits.Registry {
	t.Helper()

	reg := limits.NewRegistry(limits.WithClock(budget.NewManualClock(time.Hour)))
	reg.AddPolicy("test", budget.MustPolicy(budget.Config{
		Debounce:      10 * time.Second,
		Window:        5 * time.Second,
		Bucket:        time.Second,
		AllowedBudget: 100,
		Normalization: budget.NormalizeTotal,
	}))
	return reg
}

func httpConfig() *config.HTTPConfig {
	return &config.HTTPConfig{
		ListenAddress:   "127.0.0.1:0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
	}
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeReply(t *testing.T, rec *httptest.ResponseRecorder) api.ExceedsBudgetReply {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reply api.ExceedsBudgetReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	return reply
}

func TestHandlers_RecordAndQuery(t *testing.T) {
	h := New(httpConfig(), newTestRegistry(t)).Handler()

	reply := decodeReply(t, post(t, h, "/record_spending", `{"config_name":"test","project_id":42,"spent":60}`))
	assert.False(t, reply.ExceedsBudget)

	reply = decodeReply(t, post(t, h, "/record_spending", `{"config_name":"test","project_id":42,"spent":45}`))
	assert.True(t, reply.ExceedsBudget)

	reply = decodeReply(t, post(t, h, "/exceeds_budget", `{"config_name":"test","project_id":42}`))
	assert.True(t, reply.ExceedsBudget)

	reply = decodeReply(t, post(t, h, "/exceeds_budget", `{"config_name":"test","project_id":43}`))
	assert.False(t, reply.ExceedsBudget)
}

func TestHandlers_LargeProjectID(t *testing.T) {
	reg := newTestRegistry(t)
	h := New(httpConfig(), reg).Handler()

	// Above 2^53, where a float64 decode would lose precision.
	decodeReply(t, post(t, h, "/record_spending", `{"config_name":"test","project_id":18446744073709551615,"spent":101}`))

	assert.True(t, reg.ExceedsBudget("test", 18446744073709551615))
	assert.False(t, reg.ExceedsBudget("test", 18446744073709551614))
}

func TestHandlers_UnknownPolicy(t *testing.T) {
	reg := newTestRegistry(t)
	h := New(httpConfig(), reg).Handler()

	reply := decodeReply(t, post(t, h, "/record_spending", `{"config_name":"nope","project_id":1,"spent":1e9}`))
	assert.False(t, reply.ExceedsBudget)
	assert.Equal(t, 0, reg.Len())
}

func TestHandlers_BadRequests(t *testing.T) {
	reg := newTestRegistry(t)
	h := New(httpConfig(), reg).Handler()

	tests := []struct {
		name string
		path string
		body string
	}{
		{"empty body", "/record_spending", ""},
		{"not json", "/record_spending", "spent=1"},
		{"negative spend", "/record_spending", `{"config_name":"test","project_id":1,"spent":-1}`},
		{"negative project", "/record_spending", `{"config_name":"test","project_id":-1,"spent":1}`},
		{"string amount", "/record_spending", `{"config_name":"test","project_id":1,"spent":"1"}`},
		{"trailing data", "/exceeds_budget", `{"config_name":"test","project_id":1} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, rec.Header().Get(RequestIDHeader), resp.RequestID)
		})
	}

	assert.Equal(t, 0, reg.Len(), "rejected requests must not create records")
}

func TestHandlers_MethodNotAllowed(t *testing.T) {
	h := New(httpConfig(), newTestRegistry(t)).Handler()

	req := httptest.NewRequest(http.MethodGet, "/record_spending", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	h := New(httpConfig(), newTestRegistry(t)).Handler()

	rec := post(t, h, "/exceeds_budget", `{"config_name":"test","project_id":1}`)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodPost, "/exceeds_budget", strings.NewReader(`{"config_name":"test","project_id":1}`))
	req.Header.Set(RequestIDHeader, "client-supplied")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "client-supplied", rec.Header().Get(RequestIDHeader))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(newTestLogger())(requestIDMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal error", resp.Error)
}

func TestTelemetryRoutes(t *testing.T) {
	checker := health.New(time.Second)
	checker.RegisterCheck("always", func(context.Context) error { return nil })
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "budgetd"}, nil)

	srv := New(httpConfig(), newTestRegistry(t),
		WithHealth(checker, &config.HealthConfig{
			Enabled:       true,
			LivenessPath:  "/health/live",
			ReadinessPath: "/health/ready",
		}),
		WithMetrics(collector, &config.MetricsConfig{Enabled: true, Path: "/metrics"}),
		WithVersion(health.VersionInfo{Version: "1.2.3"}),
	)
	h := srv.Handler()

	post(t, h, "/exceeds_budget", `{"config_name":"test","project_id":1}`)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics", "/version"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `route="/exceeds_budget"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Contains(t, rec.Body.String(), "1.2.3")
}

func TestTelemetryRoutes_Disabled(t *testing.T) {
	h := New(httpConfig(), newTestRegistry(t),
		WithHealth(health.New(time.Second), &config.HealthConfig{Enabled: false, LivenessPath: "/health/live"}),
	).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv := New(httpConfig(), newTestRegistry(t), WithLogger(newTestLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}
	assert.True(t, srv.IsRunning())

	body := bytes.NewBufferString(`{"config_name":"test","project_id":5,"spent":101}`)
	resp, err := http.Post("http://"+srv.Addr()+"/record_spending", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	var reply api.ExceedsBudgetReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.True(t, reply.ExceedsBudget)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, srv.IsRunning())
}

func TestServer_StartTwice(t *testing.T) {
	srv := New(httpConfig(), newTestRegistry(t), WithLogger(newTestLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	<-srv.Ready()

	assert.Error(t, srv.Start(ctx))

	cancel()
	require.NoError(t, <-done)
}

func TestTracingMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer, err := tracing.New(&config.TracingConfig{
		Enabled:     true,
		Exporter:    "stdout",
		Sampler:     tracing.SamplerAlways,
		ServiceName: "budgetd-test",
	}, tracing.WithSpanProcessor(recorder))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	h := New(httpConfig(), newTestRegistry(t), WithTracer(tracer)).Handler()

	req := httptest.NewRequest(http.MethodPost, "/record_spending",
		strings.NewReader(`{"config_name":"test","project_id":7,"spent":1}`))
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	req.Header.Set(RequestIDHeader, "trace-req")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "POST /record_spending", span.Name())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", span.SpanContext().TraceID().String())

	attrs := span.Attributes()
	assert.Contains(t, attrs, attribute.String(tracing.AttrHTTPRoute, "/record_spending"))
	assert.Contains(t, attrs, attribute.Int(tracing.AttrHTTPStatusCode, http.StatusOK))
	assert.Contains(t, attrs, attribute.String(tracing.AttrRequestID, "trace-req"))
	assert.Contains(t, attrs, attribute.String(tracing.AttrPolicy, "test"))
	assert.Contains(t, attrs, attribute.Bool(tracing.AttrExceedsBudget, false))
}

func TestServer_MutualTLS(t *testing.T) {
	bundle := tlstest.New(t, t.TempDir())
	tlsCfg := &config.TLSConfig{
		Enabled:      true,
		CertFile:     bundle.ServerCert,
		KeyFile:      bundle.ServerKey,
		MinVersion:   "1.3",
		ClientCAFile: bundle.CAFile,
		ClientAuth:   "require",
	}
	certs := sectls.NewCertificateReloader(tlsCfg, newTestLogger())
	require.NoError(t, certs.Load())
	serverTLS, err := sectls.ServerConfig(tlsCfg, certs)
	require.NoError(t, err)

	srv := New(httpConfig(), newTestRegistry(t), WithLogger(newTestLogger()), WithTLS(serverTLS))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("server failed to start: %v", err)
	}

	url := "https://" + srv.Addr() + "/exceeds_budget"
	body := `{"config_name":"test","project_id":5}`

	clientTLS, err := sectls.ClientConfig(bundle.CAFile, bundle.ClientCert, bundle.ClientKey, "")
	require.NoError(t, err)
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: clientTLS}, Timeout: 5 * time.Second}
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	anonTLS, err := sectls.ClientConfig(bundle.CAFile, "", "", "")
	require.NoError(t, err)
	anon := &http.Client{Transport: &http.Transport{TLSClientConfig: anonTLS}, Timeout: 5 * time.Second}
	if resp, err := anon.Post(url, "application/json", strings.NewReader(body)); err == nil {
		resp.Body.Close()
		t.Fatal("expected handshake without a client certificate to fail")
	}
}
