package dataset

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrEmpty         = errors.New("dataset has no rows")
	ErrRagged        = errors.New("row width does not match header")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotBinary     = errors.New("target column is not binary")
)

// ParseError reports a cell that could not be parsed as a number.
type ParseError struct {
	Row    int    // 1-based data row (header excluded)
	Column string // Column name from the header
	Err    error  // Underlying strconv error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %q: %v", e.Row, e.Column, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
