package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// NotFound creates a new AppError for a record that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// Conflict creates a new AppError for a conflict with the current state of a record.
func Conflict(reason string) *AppError {
	return &AppError{
		Code: ErrCodeConflict, Message: reason,
		HTTPStatus: http.StatusConflict, Retryable: false,
	}
}

// ServiceNotRegistered creates a new AppError for a routed service name that
// is unknown to the gateway.
func ServiceNotRegistered(name string) *AppError {
	return &AppError{
		Code: ErrCodeServiceNotRegistered, Message: fmt.Sprintf("Service '%s' is not registered or not available.", name),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"service": name},
	}
}

// ServiceUnavailable creates a new AppError for a service that is known but
// not currently active.
func ServiceUnavailable(name string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("Service '%s' is temporarily unavailable. Please try again.", name),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": name},
	}
}

// UpstreamTimeout creates a new AppError for a downstream call that exceeded
// the forwarding deadline. Retry is safe after a delay.
func UpstreamTimeout(name string) *AppError {
	return &AppError{
		Code: ErrCodeUpstreamTimeout, Message: "The downstream service took too long to respond.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"service": name},
	}
}

// UpstreamUnreachable creates a new AppError for a connection-level failure
// to the downstream service.
func UpstreamUnreachable(name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeUpstreamUnreachable, Message: fmt.Sprintf("Unable to connect to service '%s'.", name),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": name}, Cause: cause,
	}
}

// InternalRouting creates a new AppError for an unexpected failure inside the
// forwarding path. Not retryable: this indicates a bug, not a network fault.
func InternalRouting(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternalRouting, Message: "An unexpected error occurred while routing the request.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// RegistryUnreachable creates a new AppError for a failed discovery refresh.
func RegistryUnreachable(cause error) *AppError {
	return &AppError{
		Code: ErrCodeRegistryUnreachable, Message: "The service registry is unreachable.",
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true, Cause: cause,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
