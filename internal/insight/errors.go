package insight

import (
	"fmt"
	"strings"
)

const (
	CodeValidation  = "validation"
	CodeMetrics     = "metrics"
	CodeUnavailable = "unavailable"
	CodeParse       = "parse"
	CodeInternal    = "internal"
)

// FieldError names a single violated constraint on an input field.
type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Constraint
}

// Error is the boundary error type. Only validation and metrics errors are
// surfaced to callers; collaborator failures are absorbed by the fallback.
type Error struct {
	Code    string
	Message string
	Status  int
	Fields  []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(parts, "; "))
}

func statusForCode(code string) int {
	switch code {
	case CodeValidation, CodeMetrics:
		return 400
	case CodeUnavailable:
		return 503
	default:
		return 500
	}
}

func newError(code, message string, fields []FieldError) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  statusForCode(code),
		Fields:  fields,
	}
}

// NewValidationError reports every violated constraint collected for the
// offending record in one pass.
func NewValidationError(message string, fields []FieldError) error {
	return newError(CodeValidation, message, fields)
}

// NewMetricsError reports a degenerate aggregate (e.g. zero total spend).
// It stems from supplier data, so it maps to a client error like validation.
func NewMetricsError(message string) error {
	return newError(CodeMetrics, message, nil)
}

func newCollaboratorError(message string, err error) error {
	if err != nil {
		message = message + ": " + err.Error()
	}
	return newError(CodeUnavailable, message, nil)
}

func newParseError(message string) error {
	return newError(CodeParse, message, nil)
}
