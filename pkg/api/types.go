package api

import (
	"errors"
	"fmt"
	"math"
)

// Budgets is the budgeting engine as seen by the transports.
// *limits.Registry implements it.
type Budgets interface {
	RecordSpending(policyName string, tenant uint64, amount float64) bool
	ExceedsBudget(policyName string, tenant uint64) bool
}

// RecordSpendingRequest records spend against a project.
type RecordSpendingRequest struct {
	ConfigName string  `json:"config_name"`
	ProjectID  uint64  `json:"project_id"`
	Spent      float64 `json:"spent"`
}

// ExceedsBudgetRequest queries a project's decision without recording.
type ExceedsBudgetRequest struct {
	ConfigName string `json:"config_name"`
	ProjectID  uint64 `json:"project_id"`
}

// ExceedsBudgetReply is returned by both operations.
type ExceedsBudgetReply struct {
	ExceedsBudget bool `json:"exceeds_budget"`
}

// ErrorResponse is the body of a rejected HTTP request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrInvalidRequest is wrapped by every validation error.
var ErrInvalidRequest = errors.New("invalid request")

// Validate rejects amounts the engine must never see.
func (r *RecordSpendingRequest) Validate() error {
	switch {
	case math.IsNaN(r.Spent) || math.IsInf(r.Spent, 0):
		return fmt.Errorf("%w: spent must be finite", ErrInvalidRequest)
	case r.Spent < 0:
		return fmt.Errorf("%w: spent must not be negative", ErrInvalidRequest)
	}
	return nil
}

// Serve applies the request to b.
func (r *RecordSpendingRequest) Serve(b Budgets) *ExceedsBudgetReply {
	return &ExceedsBudgetReply{ExceedsBudget: b.RecordSpending(r.ConfigName, r.ProjectID, r.Spent)}
}

// Serve applies the request to b.
func (r *ExceedsBudgetRequest) Serve(b Budgets) *ExceedsBudgetReply {
	return &ExceedsBudgetReply{ExceedsBudget: b.ExceedsBudget(r.ConfigName, r.ProjectID)}
}
