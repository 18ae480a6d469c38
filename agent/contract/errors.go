package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")
	ErrUnknownTool     = errors.New("unknown tool")
	ErrNoSession       = errors.New("tool requires an active call session")
	ErrSessionEnded    = errors.New("call session has ended")
)

// ToolError carries a message that is safe to speak to the caller.
// Cause is kept for logs only and never leaks into Error().
type ToolError struct {
	Message string
	Cause   error
}

func NewToolError(message string, cause error) *ToolError {
	return &ToolError{Message: message, Cause: cause}
}

func (e *ToolError) Error() string {
	return e.Message
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

// AsToolError reports whether err carries a caller-facing ToolError.
func AsToolError(err error) (*ToolError, bool) {
	var te *ToolError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
