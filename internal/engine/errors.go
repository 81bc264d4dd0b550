package engine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes pipeline failures.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates an unknown dataset identifier.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"

	// ErrCodeCatalog indicates the dataset's schema could not be read.
	ErrCodeCatalog ErrorCode = "CATALOG"

	// ErrCodeSynthesis indicates a malformed strategy reached the synthesizer.
	ErrCodeSynthesis ErrorCode = "SYNTHESIS"

	// ErrCodeExecution indicates the database rejected a statement.
	ErrCodeExecution ErrorCode = "EXECUTION"
)

// Error is a classified pipeline failure.
type Error struct {
	Code    ErrorCode
	Message string
	Dataset string
	SQL     string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Dataset != "" {
		msg += fmt.Sprintf(" (dataset=%s)", e.Dataset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsConfigurationError reports whether err is an unknown-dataset failure.
func IsConfigurationError(err error) bool { return hasCode(err, ErrCodeConfiguration) }

// IsCatalogError reports whether err is a schema read failure.
func IsCatalogError(err error) bool { return hasCode(err, ErrCodeCatalog) }

// IsSynthesisError reports whether err is a malformed-strategy failure.
func IsSynthesisError(err error) bool { return hasCode(err, ErrCodeSynthesis) }

// IsExecutionError reports whether err is a statement failure.
func IsExecutionError(err error) bool { return hasCode(err, ErrCodeExecution) }

// NewExecutionError wraps a driver error for sqlText.
func NewExecutionError(dataset, sqlText string, err error) *Error {
	return &Error{
		Code:    ErrCodeExecution,
		Message: "statement failed",
		Dataset: dataset,
		SQL:     sqlText,
		Err:     err,
	}
}
