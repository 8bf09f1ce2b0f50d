// Package pb holds the protobuf messages and gRPC stubs generated from
// project_budget.proto.
package pb

//go:generate protoc --go_out=. --go_opt=paths=source_relative --go-grpc_out=. --go-grpc_opt=paths=source_relative project_budget.proto
