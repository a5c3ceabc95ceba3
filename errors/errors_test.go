package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"NotFound", NotFound("service", "abc"), ErrCodeNotFound, http.StatusNotFound, false},
		{"Conflict", Conflict("name taken"), ErrCodeConflict, http.StatusConflict, false},
		{"ServiceNotRegistered", ServiceNotRegistered("billing"), ErrCodeServiceNotRegistered, http.StatusNotFound, false},
		{"ServiceUnavailable", ServiceUnavailable("billing"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"UpstreamTimeout", UpstreamTimeout("billing"), ErrCodeUpstreamTimeout, http.StatusGatewayTimeout, true},
		{"UpstreamUnreachable", UpstreamUnreachable("billing", nil), ErrCodeUpstreamUnreachable, http.StatusBadGateway, true},
		{"InternalRouting", InternalRouting(nil), ErrCodeInternalRouting, http.StatusInternalServerError, false},
		{"RegistryUnreachable", RegistryUnreachable(nil), ErrCodeRegistryUnreachable, http.StatusServiceUnavailable, true},
		{"InvalidInput", InvalidInput("port", "must be positive"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"MissingField", MissingField("name"), ErrCodeMissingField, http.StatusBadRequest, false},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestAppError_NotFound_Details(t *testing.T) {
	err := NotFound("service", "123")
	if err.Details["resource"] != "service" {
		t.Errorf("expected resource=service, got %v", err.Details["resource"])
	}
	if err.Details["id"] != "123" {
		t.Errorf("expected id=123, got %v", err.Details["id"])
	}

	noID := NotFound("service", "")
	if _, ok := noID.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := UpstreamUnreachable("billing", nil).WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestErrorCode_IsRetryableCode_Table(t *testing.T) {
	retryable := []ErrorCode{ErrCodeServiceUnavailable, ErrCodeUpstreamTimeout, ErrCodeUpstreamUnreachable, ErrCodeRegistryUnreachable}
	for _, code := range retryable {
		if !IsRetryableCode(code) {
			t.Errorf("expected %s to be retryable", code)
		}
	}

	nonRetryable := []ErrorCode{ErrCodeNotFound, ErrCodeConflict, ErrCodeServiceNotRegistered, ErrCodeInvalidInput, ErrCodeInternalRouting, ErrCodeInternal}
	for _, code := range nonRetryable {
		if IsRetryableCode(code) {
			t.Errorf("expected %s to NOT be retryable", code)
		}
	}
}

func TestAppError_ToResponse_Success(t *testing.T) {
	err := ServiceNotRegistered("billing")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeServiceNotRegistered {
		t.Errorf("expected SERVICE_NOT_REGISTERED in response, got %s", resp.Error.Code)
	}
	if resp.Error.Details["service"] != "billing" {
		t.Error("expected service=billing in response details")
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	appErr := NotFound("service", "1")
	wrapped := fmt.Errorf("lookup: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", got.Code)
	}

	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
}

func TestWrap_Behavior(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := Conflict("x")
	if got := Wrap(orig); got != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}

func TestAppError_ImplementsErrorInterface(t *testing.T) {
	var err error = UpstreamTimeout("billing")
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		t.Error("stderrors.As should work with AppError")
	}
}
