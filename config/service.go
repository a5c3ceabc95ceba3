package config

import (
	"fmt"
	"time"

	"github.com/kbukum/servicehub/logger"
	"github.com/kbukum/servicehub/observability"
	"github.com/kbukum/servicehub/server"
)

// ServiceConfig contains the configuration fields both services share.
type ServiceConfig struct {
	Name        string               `yaml:"name" mapstructure:"name"`
	Environment string               `yaml:"environment" mapstructure:"environment"`
	Version     string               `yaml:"version" mapstructure:"version"`
	Log         logger.Config        `yaml:"log" mapstructure:"log"`
	Server      server.Config        `yaml:"server" mapstructure:"server"`
	Telemetry   observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies default values to the shared configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = "1.0.0"
	}
	c.Log.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate validates the shared configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("config.log: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	return nil
}

// MonitorConfig configures the registry's liveness monitor.
type MonitorConfig struct {
	// Interval is how often the background sweep runs.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// StalenessThreshold is the maximum tolerated heartbeat gap before a
	// service is presumed dead.
	StalenessThreshold time.Duration `yaml:"staleness_threshold" mapstructure:"staleness_threshold"`
}

// ApplyDefaults applies default values to monitor configuration.
func (c *MonitorConfig) ApplyDefaults() {
	if c.Interval == 0 {
		c.Interval = time.Minute
	}
	if c.StalenessThreshold == 0 {
		c.StalenessThreshold = 5 * time.Minute
	}
}

// Validate validates monitor configuration.
func (c *MonitorConfig) Validate() error {
	if c.Interval < 0 {
		return fmt.Errorf("monitor.interval must be non-negative (got: %s)", c.Interval)
	}
	if c.StalenessThreshold <= 0 {
		return fmt.Errorf("monitor.staleness_threshold must be positive (got: %s)", c.StalenessThreshold)
	}
	return nil
}

// RegistryConfig is the full configuration for the registry service.
type RegistryConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Monitor       MonitorConfig `yaml:"monitor" mapstructure:"monitor"`
}

// ApplyDefaults applies default values to registry configuration.
func (c *RegistryConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "registry"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8001
	}
	c.ServiceConfig.ApplyDefaults()
	c.Monitor.ApplyDefaults()
}

// Validate validates registry configuration.
func (c *RegistryConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.Monitor.Validate()
}

// DiscoveryConfig configures the gateway's discovery cache.
type DiscoveryConfig struct {
	// RegistryURL is the base URL of the registry service.
	RegistryURL string `yaml:"registry_url" mapstructure:"registry_url"`
	// TTL is the maximum age of the discovery snapshot before a refresh
	// is attempted.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// RefreshTimeout bounds a single refresh fetch against the registry.
	RefreshTimeout time.Duration `yaml:"refresh_timeout" mapstructure:"refresh_timeout"`
}

// ApplyDefaults applies default values to discovery configuration.
func (c *DiscoveryConfig) ApplyDefaults() {
	if c.RegistryURL == "" {
		c.RegistryURL = "http://localhost:8001"
	}
	if c.TTL == 0 {
		c.TTL = 30 * time.Second
	}
	if c.RefreshTimeout == 0 {
		c.RefreshTimeout = 5 * time.Second
	}
}

// Validate validates discovery configuration.
func (c *DiscoveryConfig) Validate() error {
	if c.RegistryURL == "" {
		return fmt.Errorf("discovery.registry_url is required")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("discovery.ttl must be positive (got: %s)", c.TTL)
	}
	if c.RefreshTimeout <= 0 {
		return fmt.Errorf("discovery.refresh_timeout must be positive (got: %s)", c.RefreshTimeout)
	}
	return nil
}

// ProxyConfig configures the gateway's proxy router.
type ProxyConfig struct {
	// Timeout bounds a single forwarded downstream call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults applies default values to proxy configuration.
func (c *ProxyConfig) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate validates proxy configuration.
func (c *ProxyConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("proxy.timeout must be positive (got: %s)", c.Timeout)
	}
	return nil
}

// GatewayConfig is the full configuration for the gateway service.
type GatewayConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Discovery     DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Proxy         ProxyConfig     `yaml:"proxy" mapstructure:"proxy"`
}

// ApplyDefaults applies default values to gateway configuration.
func (c *GatewayConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "gateway"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	c.ServiceConfig.ApplyDefaults()
	c.Discovery.ApplyDefaults()
	c.Proxy.ApplyDefaults()
}

// Validate validates gateway configuration.
func (c *GatewayConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Discovery.Validate(); err != nil {
		return err
	}
	return c.Proxy.Validate()
}
