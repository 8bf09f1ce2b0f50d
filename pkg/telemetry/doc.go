// Package telemetry groups the observability packages of budgetd.
//
// # Components
//
//   - logging: structured logging on log/slog with request-scoped IDs
//   - metrics: the Prometheus registry, request metrics and the budget observer
//   - health: liveness and readiness checks and their HTTP endpoints
//   - tracing: OpenTelemetry spans for both transports, exported over OTLP or stdout
//
// The packages are independent; cmd/budgetd wires them together from
// config.TelemetryConfig.
package telemetry
