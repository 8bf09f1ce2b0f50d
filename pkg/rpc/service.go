package rpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mercator-hq/budgetd/pkg/api"
	"mercator-hq/budgetd/pkg/rpc/pb"
	"mercator-hq/budgetd/pkg/telemetry/tracing"
)

// Names of the ProjectBudgets service and its methods on the wire.
const (
	ServiceName                  = "project_budget.ProjectBudgets"
	RecordSpendingFullMethodName = pb.ProjectBudgets_RecordSpending_FullMethodName
	ExceedsBudgetFullMethodName  = pb.ProjectBudgets_ExceedsBudget_FullMethodName
)

// budgetService adapts api.Budgets to pb.ProjectBudgetsServer.
type budgetService struct {
	pb.UnimplementedProjectBudgetsServer
	budgets api.Budgets
}

func (s *budgetService) RecordSpending(ctx context.Context, in *pb.RecordSpendingRequest) (*pb.ExceedsBudgetReply, error) {
	req := api.RecordSpendingRequest{
		ConfigName: in.GetConfigName(),
		ProjectID:  in.GetProjectId(),
		Spent:      in.GetSpent(),
	}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	reply := req.Serve(s.budgets)
	tracing.SetDecision(ctx, req.ConfigName, req.ProjectID, reply.ExceedsBudget)
	return &pb.ExceedsBudgetReply{ExceedsBudget: reply.ExceedsBudget}, nil
}

func (s *budgetService) ExceedsBudget(ctx context.Context, in *pb.ExceedsBudgetRequest) (*pb.ExceedsBudgetReply, error) {
	req := api.ExceedsBudgetRequest{
		ConfigName: in.GetConfigName(),
		ProjectID:  in.GetProjectId(),
	}
	reply := req.Serve(s.budgets)
	tracing.SetDecision(ctx, req.ConfigName, req.ProjectID, reply.ExceedsBudget)
	return &pb.ExceedsBudgetReply{ExceedsBudget: reply.ExceedsBudget}, nil
}
