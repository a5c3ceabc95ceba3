// Package errors provides unified error handling for the registry and
// gateway services. It implements structured error types with machine-readable
// codes, HTTP status mapping, and retryable detection so that every failure
// class the gateway can hit (unknown service, downstream timeout, unreachable
// upstream, stale registry) maps to a distinct, diagnosable response.
package errors
