// Package gateway implements the API gateway: a TTL-bounded discovery cache
// over the registry's active service list and a transparent proxy that routes
// /api/{service}/{path} requests to the matching backend.
package gateway
