package settings

import (
	"errors"
	"fmt"
)

// Errors returned by settings operations.
var (
	// ErrMalformedInput indicates a blob could not be parsed or structurally
	// recognized at all.
	ErrMalformedInput = errors.New("malformed input")

	// ErrValidationFailed indicates a document carries error-severity
	// findings, blocking save and import.
	ErrValidationFailed = errors.New("validation failed")

	// ErrPersistenceFailure indicates a durable write did not confirm.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrUnknownSetting indicates a category or field not declared in the
	// schema.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrUnknownCategory indicates a category not declared in the schema.
	ErrUnknownCategory = errors.New("unknown category")
)

// TypeError indicates a mutation value whose type does not match the
// declared field type.
type TypeError struct {
	// Path is the dot-separated setting path.
	Path string
	// Expected is the declared type name.
	Expected string
	// Actual is the name of the provided value's type.
	Actual string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("type mismatch at %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// FindingsError wraps the error-severity findings that blocked an operation.
type FindingsError struct {
	Findings []Finding
}

// Error implements the error interface.
func (e *FindingsError) Error() string {
	if len(e.Findings) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", e.Findings[0].Path, e.Findings[0].Message)
	}
	return fmt.Sprintf("validation failed: %d errors", len(e.Findings))
}

// Unwrap returns ErrValidationFailed so callers can match with errors.Is.
func (e *FindingsError) Unwrap() error {
	return ErrValidationFailed
}
