package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common application errors
var (
	ErrUnmounted = errors.New("view unmounted before the user was loaded")
	ErrInternal  = NewInternalError("internal server error", nil)
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// HTTPStatus reports a bad gateway: the invalid payload came from upstream.
func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadGateway
}

// TransportError represents a failure to reach the user endpoint at all
type TransportError struct {
	URL string
	Err error
}

// NewTransportError creates a new transport error
func NewTransportError(url string, err error) *TransportError {
	return &TransportError{
		URL: url,
		Err: err,
	}
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

// Unwrap returns the wrapped error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *TransportError) HTTPStatus() int {
	return http.StatusBadGateway
}

// StatusError represents a non-2xx response from the user endpoint
type StatusError struct {
	Code int
	Body string
}

// NewStatusError creates a new status error
func NewStatusError(code int, body string) *StatusError {
	return &StatusError{
		Code: code,
		Body: body,
	}
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// HTTPStatus returns the HTTP status for this error
func (e *StatusError) HTTPStatus() int {
	return http.StatusBadGateway
}

// DecodeError represents a response body that is not a usable user payload
type DecodeError struct {
	Err error
}

// NewDecodeError creates a new decode error
func NewDecodeError(err error) *DecodeError {
	return &DecodeError{Err: err}
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid user payload: %v", e.Err)
}

// Unwrap returns the wrapped error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *DecodeError) HTTPStatus() int {
	return http.StatusBadGateway
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// HTTPStatuser interface for errors that can provide an HTTP status
type HTTPStatuser interface {
	HTTPStatus() int
}

// HTTPStatus returns the status carried by err, or 500 when none is found.
func HTTPStatus(err error) int {
	var s HTTPStatuser
	if errors.As(err, &s) {
		return s.HTTPStatus()
	}
	return http.StatusInternalServerError
}
