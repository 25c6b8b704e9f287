package service

import (
	"errors"
	"fmt"
)

// ErrStateConflict reports a transition attempt whose guard did not match:
// the row is missing, already processed, or belongs to another department.
// The three causes are deliberately not distinguished; the row state alone
// cannot tell them apart, and idempotent retries rely on the coarse signal.
var ErrStateConflict = errors.New("service not found or already processed")

// ValidationError rejects malformed input before any storage access.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NothingToProcessError reports a payment batch with zero eligible rows,
// with the breakdown the cashier needs to explain the situation.
type NothingToProcessError struct {
	Duplicates       []string
	AlreadyProcessed []string
	TotalRequested   int
}

func (e *NothingToProcessError) Error() string {
	return "no pending services found to process"
}
