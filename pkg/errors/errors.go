package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
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

// GRPCStatus returns the gRPC status for this error
func (e *ValidationError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// ConflictError represents a unique-constraint violation reported by the store
type ConflictError struct {
	Resource string
	Message  string
	Err      error
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// Unwrap returns the wrapped driver error
func (e *ConflictError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *ConflictError) GRPCStatus() *status.Status {
	return status.New(codes.AlreadyExists, e.Error())
}

// UnavailableError represents a backing store that is unreachable or timed out
type UnavailableError struct {
	Message string
	Err     error
}

// NewUnavailableError creates a new unavailable error
func NewUnavailableError(message string, err error) *UnavailableError {
	return &UnavailableError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *UnavailableError) GRPCStatus() *status.Status {
	return status.New(codes.Unavailable, e.Message)
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

// GRPCStatus returns the gRPC status for this error
func (e *InternalError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, e.Message)
}

// HTTPStatus maps an error from the usecase or store layers to an HTTP status code.
func HTTPStatus(err error) int {
	var (
		validationErr  *ValidationError
		conflictErr    *ConflictError
		unavailableErr *UnavailableError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.As(err, &validationErr):
		return http.StatusBadRequest
	case stderrors.As(err, &conflictErr):
		return http.StatusConflict
	case stderrors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the short machine-readable code used in error response bodies.
func Code(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusConflict:
		return "conflict"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}
