package types

import "fmt"

// ValidationError is rejected input: no side effects have occurred.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ServiceUnavailableError means the analyzer could not be reached at all.
// Refused distinguishes a refused TCP connection from other transport
// failures.
type ServiceUnavailableError struct {
	Refused bool
	Err     error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("analysis backend unavailable: %v", e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

// Detail is the operator-facing explanation surfaced alongside a 503.
func (e *ServiceUnavailableError) Detail() string {
	if e.Refused {
		return "Connection refused - analysis backend not running"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "transport failure"
}

// AnalysisError covers an analyzer that responded but signalled failure,
// or returned a report that does not match the expected shape.
type AnalysisError struct {
	Reason string
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("analysis failed: %s", e.Reason)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// ConflictError is an insert of a jobId that already exists.
type ConflictError struct {
	JobID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("claim %s already exists", e.JobID)
}

// NotFoundError is a lookup of an unknown jobId.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("claim %s not found", e.JobID)
}
