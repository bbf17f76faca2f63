package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error taxonomy. Stages degrade internally wherever a partial
// result is meaningful; these sentinels cover the cases that must cross a
// stage boundary.
var (
	// ErrDocumentDecode: the input bytes could not be decoded at all.
	// Fatal to the run.
	ErrDocumentDecode = errors.New("document could not be decoded")
	// ErrEngineUnavailable: the OCR dependency is missing. Acquisition
	// degrades to an empty result; never fatal.
	ErrEngineUnavailable = errors.New("ocr engine unavailable")
	// ErrEntityResolution: no entity could be produced for a required role.
	ErrEntityResolution = errors.New("entity could not be resolved")
	// ErrPersistence: the store rejected a write. Surfaced verbatim; the
	// pipeline does not retry.
	ErrPersistence = errors.New("persistence failure")

	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
