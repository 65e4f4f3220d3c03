package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to classify a *DecodeError.
var (
	// ErrStructural marks framing failures: empty line, missing header marker,
	// wrong line length.
	ErrStructural = errors.New("structural error")
	// ErrFormat marks a field whose text does not parse under its rule or
	// decodes to a code outside its enumeration.
	ErrFormat = errors.New("format error")
)

// DecodeError describes why a header or level line could not be decoded.
type DecodeError struct {
	Kind   error  // ErrStructural or ErrFormat
	Field  string // empty for structural errors
	Reason string
	Err    error // underlying parse error, if any
}

func (e *DecodeError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func structuralError(format string, args ...any) *DecodeError {
	return &DecodeError{Kind: ErrStructural, Reason: fmt.Sprintf(format, args...)}
}

func formatError(field, reason string, err error) *DecodeError {
	return &DecodeError{Kind: ErrFormat, Field: field, Reason: reason, Err: err}
}
