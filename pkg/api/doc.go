// Package api defines the request and reply messages shared by the HTTP and
// gRPC transports, and the Budgets interface both transports serve.
//
// Field names match the JSON bodies on the wire:
//
//	POST /record_spending  {"config_name": "symbolication-js", "project_id": 42, "spent": 1.5}
//	POST /exceeds_budget   {"config_name": "symbolication-js", "project_id": 42}
//	reply                  {"exceeds_budget": false}
package api
