package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrHeaderTooLarge   = errors.New("header exceeds maximum size")
	ErrInvalidHeader    = errors.New("invalid safetensors header")
	ErrUnsupportedDType = errors.New("unsupported dtype")
	ErrOutOfBounds      = errors.New("tensor extends beyond data section")
	ErrNegativeOffset   = errors.New("negative offset or size")
	ErrInvalidShape     = errors.New("invalid tensor shape")
)

// ValidationError provides detailed information about a malformed tensor entry.
type ValidationError struct {
	Tensor  string // Tensor name involved
	Err     error  // Underlying sentinel error
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("tensor %q: %v: %s", e.Tensor, e.Err, e.Details)
	}
	return fmt.Sprintf("tensor %q: %v", e.Tensor, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
