// Package registry implements the service registry: an in-memory store of
// service records keyed by routing name, a liveness monitor that demotes
// services whose heartbeats go stale, and the HTTP API the gateway and the
// services themselves talk to.
package registry
