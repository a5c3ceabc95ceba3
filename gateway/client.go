package gateway

import (
	"context"
	"fmt"

	"github.com/kbukum/servicehub/config"
	"github.com/kbukum/servicehub/httpclient"
	"github.com/kbukum/servicehub/registry"
)

// Lister fetches the registry's active service set.
type Lister interface {
	ListActive(ctx context.Context) ([]*registry.Service, error)
}

// registryClient reads the registry over HTTP.
type registryClient struct {
	http *httpclient.Client
}

// NewRegistryClient creates a read client for the configured registry.
func NewRegistryClient(cfg config.DiscoveryConfig) Lister {
	cfg.ApplyDefaults()
	return &registryClient{
		http: httpclient.New(httpclient.Config{
			BaseURL: cfg.RegistryURL,
			Timeout: cfg.RefreshTimeout,
		}),
	}
}

// ListActive fetches all active services from the registry.
func (c *registryClient) ListActive(ctx context.Context) ([]*registry.Service, error) {
	var envelope struct {
		Data []*registry.Service `json:"data"`
	}
	err := c.http.Get(ctx, "/api/registry/services", map[string]string{"active_only": "true"}, &envelope)
	if err != nil {
		return nil, fmt.Errorf("list active services: %w", err)
	}
	return envelope.Data, nil
}
