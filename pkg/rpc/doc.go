// Package rpc provides the gRPC transport for the budgeting engine.
//
// The service is project_budget.ProjectBudgets, defined in
// pb/project_budget.proto, with two unary methods:
//
//	RecordSpending(RecordSpendingRequest) returns (ExceedsBudgetReply)
//	ExceedsBudget(ExceedsBudgetRequest)   returns (ExceedsBudgetReply)
//
// Messages are protobuf encoded, so any client generated from the proto
// file can call the server. The handlers convert them to the types of
// package api and apply the same validation as the HTTP transport.
//
// The server also exposes the standard grpc.health.v1 service and,
// optionally, server reflection.
package rpc
