package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registry lookup errors
const (
	// ErrCodeNotFound indicates the requested record was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict indicates a conflict with the current state of a record.
	// Reserved: registration resolves name collisions by upsert, so nothing
	// emits this today.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Gateway resolution errors
const (
	// ErrCodeServiceNotRegistered indicates the routed service name is not
	// present in the discovery snapshot.
	ErrCodeServiceNotRegistered ErrorCode = "SERVICE_NOT_REGISTERED"
	// ErrCodeServiceUnavailable indicates the service is known but not
	// currently active, or the gateway has no discovery snapshot at all.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Gateway forwarding errors
const (
	// ErrCodeUpstreamTimeout indicates the downstream call exceeded the
	// forwarding deadline.
	ErrCodeUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"
	// ErrCodeUpstreamUnreachable indicates a connection-level failure to the
	// downstream service (refused, DNS, reset).
	ErrCodeUpstreamUnreachable ErrorCode = "UPSTREAM_UNREACHABLE"
	// ErrCodeInternalRouting indicates an unexpected failure inside the
	// forwarding path itself.
	ErrCodeInternalRouting ErrorCode = "INTERNAL_ROUTING_ERROR"
	// ErrCodeRegistryUnreachable indicates the discovery refresh against the
	// registry failed. Recovered locally by stale-serving; it only surfaces
	// when no snapshot has ever been obtained.
	ErrCodeRegistryUnreachable ErrorCode = "REGISTRY_UNREACHABLE"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the request payload is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable:  true,
	ErrCodeUpstreamTimeout:     true,
	ErrCodeUpstreamUnreachable: true,
	ErrCodeRegistryUnreachable: true,
	ErrCodeInternalRouting:     false,
	ErrCodeInternal:            false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
