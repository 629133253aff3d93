package capacity

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every validation failure. A validation
// failure aborts the whole invocation before any per-unit output exists.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError names the input that was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidInput) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

func invalidErr(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
