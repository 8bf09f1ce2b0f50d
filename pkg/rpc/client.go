package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"mercator-hq/budgetd/pkg/rpc/pb"
	"mercator-hq/budgetd/pkg/telemetry/tracing"
)

// Client calls a remote ProjectBudgets service.
type Client struct {
	conn *grpc.ClientConn
	stub pb.ProjectBudgetsClient
}

// Dial creates a client for target. The connection is plaintext unless opts
// supply transport credentials.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", target, err)
	}
	return &Client{conn: conn, stub: pb.NewProjectBudgetsClient(conn)}, nil
}

// Conn returns the underlying connection.
func (c *Client) Conn() *grpc.ClientConn {
	return c.conn
}

// RecordSpending records amount against project under policy and returns
// the decision.
func (c *Client) RecordSpending(ctx context.Context, policy string, project uint64, amount float64, opts ...grpc.CallOption) (bool, error) {
	in := &pb.RecordSpendingRequest{ConfigName: policy, ProjectId: project, Spent: amount}
	out, err := c.stub.RecordSpending(tracing.InjectGRPC(ctx), in, opts...)
	if err != nil {
		return false, err
	}
	return out.GetExceedsBudget(), nil
}

// ExceedsBudget queries the decision for project under policy.
func (c *Client) ExceedsBudget(ctx context.Context, policy string, project uint64, opts ...grpc.CallOption) (bool, error) {
	in := &pb.ExceedsBudgetRequest{ConfigName: policy, ProjectId: project}
	out, err := c.stub.ExceedsBudget(tracing.InjectGRPC(ctx), in, opts...)
	if err != nil {
		return false, err
	}
	return out.GetExceedsBudget(), nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
