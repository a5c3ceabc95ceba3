// Package component defines the lifecycle contract shared by long-running
// pieces of the registry and gateway (HTTP server, liveness monitor,
// discovery cache) and the health type reported by the /health endpoint.
package component
