package workflow

import "errors"

var (
	// ErrWrongPhase indicates an operation was invoked while the session is
	// in a phase that does not permit it.
	ErrWrongPhase = errors.New("operation not allowed in current phase")
	// ErrMissingDocument indicates a plan document required by the operation
	// has not been generated yet.
	ErrMissingDocument = errors.New("required plan document missing")
	// ErrGenerationTimeout indicates the planner did not respond within the
	// configured generation timeout.
	ErrGenerationTimeout = errors.New("plan generation timed out")
)
