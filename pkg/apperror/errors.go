package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict       = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable  = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}

	// Register-domain errors
	ErrInvalidQuantity = &AppError{Code: http.StatusUnprocessableEntity, Message: "Quantity must not be negative"}
	ErrEmptyCart       = &AppError{Code: http.StatusUnprocessableEntity, Message: "Cart is empty"}
	ErrInvalidMarkup   = &AppError{Code: http.StatusUnprocessableEntity, Message: "Markup percent must be between 0 and 100"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// LocalPersistenceError is the fatal error class of the offline pipeline: the
// sale could not be written to the terminal's own database, so the
// never-lose-a-sale guarantee cannot be kept and the checkout must fail hard.
type LocalPersistenceError struct {
	Err error
}

func (e *LocalPersistenceError) Error() string {
	return "failed to persist sale locally: " + e.Err.Error()
}

func (e *LocalPersistenceError) Unwrap() error {
	return e.Err
}

// NewLocalPersistenceError wraps a local store failure
func NewLocalPersistenceError(err error) *LocalPersistenceError {
	return &LocalPersistenceError{Err: err}
}

// IsLocalPersistenceError checks if an error is a LocalPersistenceError
func IsLocalPersistenceError(err error) bool {
	var lpe *LocalPersistenceError
	return errors.As(err, &lpe)
}

// RemoteSubmissionError is always non-fatal: the sale is already durable
// locally and will be retried by a later sync.
type RemoteSubmissionError struct {
	Err error
}

func (e *RemoteSubmissionError) Error() string {
	return "remote submission failed: " + e.Err.Error()
}

func (e *RemoteSubmissionError) Unwrap() error {
	return e.Err
}

// NewRemoteSubmissionError wraps a failed submission attempt
func NewRemoteSubmissionError(err error) *RemoteSubmissionError {
	return &RemoteSubmissionError{Err: err}
}

// DebtRegistrationError is always non-fatal: the sale itself is already
// synced, only the follow-up debt record failed.
type DebtRegistrationError struct {
	Err error
}

func (e *DebtRegistrationError) Error() string {
	return "debt registration failed: " + e.Err.Error()
}

func (e *DebtRegistrationError) Unwrap() error {
	return e.Err
}

// NewDebtRegistrationError wraps a failed debt registration
func NewDebtRegistrationError(err error) *DebtRegistrationError {
	return &DebtRegistrationError{Err: err}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
