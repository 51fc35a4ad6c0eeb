package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeValidation indicates malformed caller input
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeSessionExpired indicates a session past its TTL
	ErrorTypeSessionExpired ErrorType = "SESSION_EXPIRED"

	// ErrorTypeBackendTimeout indicates a retrieval backend exceeded its time budget
	ErrorTypeBackendTimeout ErrorType = "BACKEND_TIMEOUT"

	// ErrorTypeBackendUnavailable indicates a retrieval backend unreachable after retry
	ErrorTypeBackendUnavailable ErrorType = "BACKEND_UNAVAILABLE"

	// ErrorTypeNLU indicates a recoverable natural-language-understanding failure
	ErrorTypeNLU ErrorType = "NLU"

	// ErrorTypeGuardrail indicates the query was rejected before the pipeline
	ErrorTypeGuardrail ErrorType = "GUARDRAIL"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewSessionExpiredError creates a new session expired error
func NewSessionExpiredError(sessionID string) *AppError {
	return &AppError{
		Type:    ErrorTypeSessionExpired,
		Message: fmt.Sprintf("session %s expired", sessionID),
	}
}

// NewBackendTimeoutError creates a new backend timeout error
func NewBackendTimeoutError(backend string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeBackendTimeout,
		Message: fmt.Sprintf("backend %s exceeded its time budget", backend),
		Err:     err,
	}
}

// NewBackendUnavailableError creates a new backend unavailable error
func NewBackendUnavailableError(backend string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeBackendUnavailable,
		Message: fmt.Sprintf("backend %s unavailable", backend),
		Err:     err,
	}
}

// NewNLUError creates a new NLU error
func NewNLUError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeNLU,
		Message: message,
		Err:     err,
	}
}

// NewGuardrailError creates a new guardrail rejection error
func NewGuardrailError(reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeGuardrail,
		Message: reason,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}
