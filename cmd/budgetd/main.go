// budgetd tracks per-project spending against named budgeting policies and
// tells callers whether a project currently exceeds its budget.
//
// It serves two operations over HTTP+JSON and gRPC:
//   - RecordSpending(policy, project, amount) -> exceeds_budget
//   - ExceedsBudget(policy, project) -> exceeds_budget
//
// Usage:
//
//	# Start the server with the built-in policies
//	budgetd run
//
//	# Start with a configuration file
//	budgetd run --config /etc/budgetd/config.yaml
//
//	# Validate a configuration file
//	budgetd validate --config config.yaml
//
//	# Record spend against a running server
//	budgetd record symbolication-js 42 1.5
//
//	# Load test the engine in-process
//	budgetd bench --tenants 65536 --ops 5000000
package main

func main() {
	Execute()
}
