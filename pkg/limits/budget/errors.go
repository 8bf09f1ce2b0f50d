package budget

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy is returned when a policy configuration is malformed.
var ErrInvalidPolicy = errors.New("invalid budget policy")

// PolicyError describes which policy field failed validation.
type PolicyError struct {
	Field   string
	Message string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidPolicy, e.Field, e.Message)
}

// Unwrap allows errors.Is(err, ErrInvalidPolicy).
func (e *PolicyError) Unwrap() error {
	return ErrInvalidPolicy
}
