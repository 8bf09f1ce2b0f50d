// Package server provides the HTTP+JSON transport for the budgeting engine.
//
// # Routes
//
//	POST /record_spending   record spend, reply with the decision
//	POST /exceeds_budget    query the decision without recording
//	GET  /health/live       liveness probe (path configurable)
//	GET  /health/ready      readiness probe (path configurable)
//	GET  /metrics           Prometheus exposition (path configurable)
//	GET  /version           build information
//
// Both budget routes reply with {"exceeds_budget": bool}. Malformed bodies,
// negative amounts and non-finite amounts are rejected with 400. Unknown
// policy names are not an error: they reply false.
//
// # Middleware
//
// Requests pass through recovery, request ID, logging and metrics middleware,
// outermost first. The request ID is taken from X-Request-ID when the client
// sends one and generated otherwise.
//
// # Usage
//
//	srv := server.New(&cfg.Server.HTTP, registry,
//	    server.WithHealth(checker, &cfg.Telemetry.Health),
//	    server.WithMetrics(collector, &cfg.Telemetry.Metrics),
//	    server.WithLogger(logger),
//	)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled and then shuts the listener down
// gracefully within the configured shutdown timeout.
package server
