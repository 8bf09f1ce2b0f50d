package tracing

// Span attribute keys. Transport attributes follow OpenTelemetry semantic
// conventions; budget attributes use the "budgetd." namespace.
const (
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.response.status_code"

	AttrRPCSystem     = "rpc.system"
	AttrRPCMethod     = "rpc.method"
	AttrRPCStatusCode = "rpc.grpc.status_code"

	AttrRequestID     = "budgetd.request_id"
	AttrPolicy        = "budgetd.policy"
	AttrProjectID     = "budgetd.project_id"
	AttrExceedsBudget = "budgetd.exceeds_budget"
)
