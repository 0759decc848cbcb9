package services

import (
	"errors"
	"fmt"
)

// ExtractionError wraps any failure while turning an uploaded discovery file
// into a structured record. The intake stage reports it and leaves prior
// state untouched; it never substitutes fabricated data.
type ExtractionError struct {
	Category string
	Cause    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Category, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// GenerationError marks one failed generation slot. Sibling slots in the same
// batch are unaffected; the slot stays empty and can be retried on its own.
type GenerationError struct {
	Slot  string
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for %s: %v", e.Slot, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// ValidationError blocks an operation or stage transition without losing any
// data. Handlers map it to a 4xx response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var ErrNotFound = errors.New("not found")
