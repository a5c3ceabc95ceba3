// Package server provides the shared gin-backed HTTP server used by the
// registry and gateway binaries: lifecycle (bind, serve, graceful shutdown),
// the standard middleware stack, and JSON response helpers.
package server
