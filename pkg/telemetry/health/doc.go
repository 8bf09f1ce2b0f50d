// Package health provides liveness, readiness and version endpoints.
//
// # Endpoints
//
//   - /health/live: the process is running
//   - /health/ready: every critical component check passes
//   - /version: build information
//
// # Usage
//
//	checker := health.New(time.Second)
//
//	// The budget maintenance loop must keep running for the process to be
//	// ready.
//	checker.RegisterCheck("maintenance", func(ctx context.Context) error {
//	    return registry.CheckMaintenance(ctx, 10*time.Second)
//	})
//
//	// A broken configuration file on disk is reported but does not take
//	// the process out of rotation.
//	checker.RegisterInformational("config", watcher.Check)
//
//	r.Get("/health/live", checker.LivenessHandler())
//	r.Get("/health/ready", checker.ReadinessHandler())
//
// # Readiness Response
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "maintenance": {"status": "ok"},
//	        "config": {"status": "warning", "message": "configuration on disk is invalid: ..."}
//	    },
//	    "timestamp": "2026-10-18T10:30:00Z"
//	}
//
// A failing critical check turns the status into "degraded" and the endpoint
// answers 503 Service Unavailable.
package health
