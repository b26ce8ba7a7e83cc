// File: /models/errors.go
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes returned to API clients.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL_ERROR"
	CodeTimeout             = "TIMEOUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInvalidType         = "INVALID_TYPE"
	CodeTooLarge            = "TOO_LARGE"
	CodeNoEventSelected     = "NO_EVENT_SELECTED"
	CodeNoPhotoUploaded     = "NO_PHOTO_UPLOADED"
	CodeMissingFields       = "MISSING_FIELDS"
	CodeInvalidYear         = "INVALID_YEAR"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeDuplicateSubmission = "DUPLICATE_SUBMISSION"
	CodeUnexpectedFields    = "UNEXPECTED_FIELDS"
	CodeConfirmationUnknown = "CONFIRMATION_NOT_FOUND"
	CodeConfirmationDenied  = "CONFIRMATION_NOT_ALLOWED"
	CodePartialActivation   = "PARTIAL_ACTIVATION"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// AsAppError extracts an *AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func NewAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// NewUserFacingError wraps a backend failure with the message shown to the user.
func NewUserFacingError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

func NewTimeoutError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeTimeout,
		Message: message,
		Err:     err,
	}
}

func NewMissingFieldsError(fields []string) *AppError {
	return &AppError{
		Code:    CodeMissingFields,
		Message: "Please fill in all required fields: " + strings.Join(fields, ", "),
	}
}

func NewUnexpectedFieldsError(fields []string) *AppError {
	return &AppError{
		Code:    CodeUnexpectedFields,
		Message: "Unexpected fields: " + strings.Join(fields, ", "),
	}
}
