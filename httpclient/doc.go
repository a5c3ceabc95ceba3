// Package httpclient provides a small HTTP client with typed error
// classification. Transport failures are split into timeout and connection
// errors, and non-2xx responses into status-class errors, so callers such as
// the gateway can map each failure to a distinct response class.
package httpclient
