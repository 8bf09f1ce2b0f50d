// Package tracing provides OpenTelemetry distributed tracing for budgetd.
//
// # Overview
//
// A Tracer wraps an SDK tracer provider configured from
// config.TracingConfig. When tracing is disabled it hands out noop spans,
// so transports can start spans unconditionally.
//
// # Exporters
//
//   - otlp: OTLP over gRPC to a collector (default localhost:4317)
//   - stdout: pretty-printed spans on standard output, for local debugging
//
// # Propagation
//
// W3C Trace Context and Baggage are installed as the global propagator.
// Extract reads them from HTTP headers; ExtractGRPC and InjectGRPC move
// them through gRPC metadata.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithVersion(version))
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "project_budget.ProjectBudgets/RecordSpending")
//	defer span.End()
package tracing
