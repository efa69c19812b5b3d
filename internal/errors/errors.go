package errors

import (
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidAction indicates an unrecognized mailbox action
	ErrInvalidAction = errors.New("invalid action")

	// ErrInvalidFolder indicates a folder value outside the valid set
	ErrInvalidFolder = errors.New("invalid folder")

	// ErrEmailNotFound indicates the email was not found
	ErrEmailNotFound = errors.New("email not found")

	// ErrDraftNotFound indicates the draft was not found
	ErrDraftNotFound = errors.New("draft not found")

	// ErrAttachmentNotFound indicates the attachment was not found
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrProvider indicates the delivery provider rejected or failed a call
	ErrProvider = errors.New("delivery provider error")

	// ErrProviderTimeout indicates the delivery provider call timed out
	ErrProviderTimeout = errors.New("delivery provider timeout")

	// ErrPersistence indicates a store write failed after an external side
	// effect already happened (logged, not surfaced to the caller)
	ErrPersistence = errors.New("persistence failure")

	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates forbidden access
	ErrForbidden = errors.New("forbidden")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")
)

// Error codes for API responses
const (
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidAction    = "INVALID_ACTION"
	CodeProviderError    = "PROVIDER_ERROR"
	CodeProviderTimeout  = "PROVIDER_TIMEOUT"
	CodePersistenceError = "PERSISTENCE_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeInternalError    = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// NewProviderError wraps a provider failure so the original provider
// code/message stays visible to the caller.
func NewProviderError(provider string, err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %s: %v", ErrProvider, provider, err),
		Message: fmt.Sprintf("provider %s: %v", provider, err),
		Code:    CodeProviderError,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrEmailNotFound) ||
		errors.Is(err, ErrDraftNotFound) ||
		errors.Is(err, ErrAttachmentNotFound)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidFolder)
}

// IsProvider checks if the error originated at the delivery provider
func IsProvider(err error) bool {
	return errors.Is(err, ErrProvider) || errors.Is(err, ErrProviderTimeout)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	switch {
	case IsNotFound(err):
		return CodeNotFound
	case errors.Is(err, ErrInvalidAction):
		return CodeInvalidAction
	case IsInvalidInput(err):
		return CodeInvalidInput
	case errors.Is(err, ErrProviderTimeout):
		return CodeProviderTimeout
	case errors.Is(err, ErrProvider):
		return CodeProviderError
	case errors.Is(err, ErrPersistence):
		return CodePersistenceError
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	default:
		return CodeInternalError
	}
}
