package nn

import (
	"errors"
	"fmt"
)

// Common errors. Every typed error below unwraps to one of these.
var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrConfiguration   = errors.New("invalid configuration")
	ErrNumericOverflow = errors.New("non-finite value")
)

// ShapeMismatchError reports adjacent layers whose widths disagree.
type ShapeMismatchError struct {
	Layer int // Index the rejected layer would have had
	Want  int // Width produced by the preceding layers
	Got   int // Input width of the rejected layer
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%v: layer %d expects input width %d, previous layer produces %d",
		ErrShapeMismatch, e.Layer, e.Got, e.Want)
}

// Unwrap returns ErrShapeMismatch.
func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}

// ConfigurationError reports an invalid argument to Add, Predict or Fit.
type ConfigurationError struct {
	Field   string // Offending argument (e.g., "epochs", "rows[3]")
	Details string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrConfiguration, e.Field, e.Details)
}

// Unwrap returns ErrConfiguration.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NumericOverflowError reports a NaN or infinite loss during training.
type NumericOverflowError struct {
	Epoch  int     // 1-based epoch
	Sample int     // 0-based row index
	Value  float64 // Offending loss value
}

// Error implements the error interface.
func (e *NumericOverflowError) Error() string {
	return fmt.Sprintf("%v: loss %v at epoch %d, sample %d", ErrNumericOverflow, e.Value, e.Epoch, e.Sample)
}

// Unwrap returns ErrNumericOverflow.
func (e *NumericOverflowError) Unwrap() error {
	return ErrNumericOverflow
}

func configError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Details: fmt.Sprintf(format, args...)}
}
