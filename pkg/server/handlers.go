package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mercator-hq/budgetd/pkg/api"
	"mercator-hq/budgetd/pkg/telemetry/logging"
	"mercator-hq/budgetd/pkg/telemetry/tracing"
)

// maxBodyBytes bounds request bodies. Both messages are a few dozen bytes.
const maxBodyBytes = 64 << 10

func (s *Server) handleRecordSpending(w http.ResponseWriter, r *http.Request) {
	var req api.RecordSpendingRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	reply := req.Serve(s.budgets)
	tracing.SetDecision(r.Context(), req.ConfigName, req.ProjectID, reply.ExceedsBudget)
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleExceedsBudget(w http.ResponseWriter, r *http.Request) {
	var req api.ExceedsBudgetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	reply := req.Serve(s.budgets)
	tracing.SetDecision(r.Context(), req.ConfigName, req.ProjectID, reply.ExceedsBudget)
	writeJSON(w, http.StatusOK, reply)
}

// decodeBody decodes exactly one JSON value from the request body.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", api.ErrInvalidRequest)
		}
		return fmt.Errorf("%w: %v", api.ErrInvalidRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after body", api.ErrInvalidRequest)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	writeJSON(w, code, api.ErrorResponse{
		Error:     err.Error(),
		RequestID: logging.GetRequestID(r.Context()),
	})
}
