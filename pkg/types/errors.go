package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure of a conversion run wraps exactly one of these, except
// unexpected internal failures.
var (
	ErrParse            = errors.New("parse error")
	ErrDegenerateVector = errors.New("degenerate vector")
	ErrInsufficientData = errors.New("insufficient data")
	ErrIO               = errors.New("io error")
	// ErrValidation marks settings rejected before any input is read.
	ErrValidation       = errors.New("validation error")
)

// ParseError describes a record that could not be decoded.
// Record is the zero-based position in the input, or -1 when the document itself is malformed.
type ParseError struct {
	Record int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Record < 0:
		return fmt.Sprintf("parse error: %v", e.Err)
	case e.Field == "":
		return fmt.Sprintf("parse error: record %d: %v", e.Record, e.Err)
	case e.Value == "":
		return fmt.Sprintf("parse error: record %d: field %q: %v", e.Record, e.Field, e.Err)
	default:
		return fmt.Sprintf("parse error: record %d: field %q (%q): %v", e.Record, e.Field, e.Value, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrParse) match any *ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ErrorKind maps an error to the short label used in logs, span attributes and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrDegenerateVector):
		return "degenerate_vector"
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
