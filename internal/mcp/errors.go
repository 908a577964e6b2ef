package mcp

import (
	"errors"
	"fmt"

	"github.com/mlehane/scaffolder-mcp/internal/domain/session"
	"github.com/mlehane/scaffolder-mcp/internal/domain/workflow"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors return nil
// and are surfaced verbatim by the transport.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: "session not found", Details: err.Error(), RecoveryHint: "Call start_project or check the session id"}
	case errors.Is(err, workflow.ErrWrongPhase):
		return &APIError{Code: "WRONG_PHASE", Message: "operation not allowed in current phase", Details: err.Error(), RecoveryHint: "Check the session phase with get_session"}
	case errors.Is(err, session.ErrInvalidTransition):
		return &APIError{Code: "INVALID_TRANSITION", Message: "invalid phase transition", Details: err.Error(), RecoveryHint: "Phases advance one step at a time"}
	case errors.Is(err, workflow.ErrMissingDocument):
		return &APIError{Code: "MISSING_DOCUMENT", Message: "required plan document missing", Details: err.Error(), RecoveryHint: "Generate the document before approving or updating it"}
	case errors.Is(err, workflow.ErrGenerationTimeout):
		return &APIError{Code: "GENERATION_TIMEOUT", Message: "plan generation timed out", Details: err.Error(), RecoveryHint: "Retry the generation call"}
	case errors.Is(err, session.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "invalid input", Details: err.Error(), RecoveryHint: "Check required arguments"}
	default:
		return nil
	}
}
