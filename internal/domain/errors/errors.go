package errors

import (
	"errors"
	"fmt"
)

// Error types matching the engine's failure taxonomy: validation errors are
// clamped upstream and rarely surface, configuration errors fall back to
// defaults, calculation failures drop a single candidate, and nothing in
// this core is fatal to the owning process.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeCalculation   ErrorType = "calculation"
	ErrorTypeInternal      ErrorType = "internal"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeTimeout       ErrorType = "timeout"
)

// AppError represents a structured application error
type AppError struct {
	Type      ErrorType      `json:"type"`
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Cause     error          `json:"-"`
	Retryable bool           `json:"retryable"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:      ErrorTypeValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

func NewConfigurationError(code, message string) *AppError {
	return &AppError{
		Type:      ErrorTypeConfiguration,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

func NewCalculationError(message string) *AppError {
	return &AppError{
		Type:      ErrorTypeCalculation,
		Code:      "CALCULATION_FAILED",
		Message:   message,
		Retryable: true,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:      ErrorTypeNotFound,
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("%s not found", resource),
		Retryable: false,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:      ErrorTypeInternal,
		Code:      "INTERNAL_ERROR",
		Message:   message,
		Retryable: true,
	}
}

func NewTimeoutError(operation string) *AppError {
	return &AppError{
		Type:      ErrorTypeTimeout,
		Code:      "OPERATION_TIMEOUT",
		Message:   fmt.Sprintf("%s timed out", operation),
		Retryable: true,
	}
}

// Predefined common errors
var (
	ErrTemplateNotFound = NewNotFoundError("event template")
	ErrRegionNotFound   = NewNotFoundError("region")
	ErrFactorNotFound   = NewNotFoundError("mitigation factor")
	ErrScoringTimeout   = NewTimeoutError("score calculation")
)

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}
