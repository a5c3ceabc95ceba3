package registry

import (
	"encoding/json"
	"fmt"
	"time"
)

// Service is a registered microservice record. Name is the unique routing key
// the gateway matches against; ID is a stable identity that survives
// re-registration of the same name.
type Service struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	DisplayName    string         `json:"display_name"`
	Description    string         `json:"description,omitempty"`
	Version        string         `json:"version"`
	Host           string         `json:"host"`
	Port           int            `json:"port"`
	BasePath       string         `json:"base_path"`
	IsActive       bool           `json:"is_active"`
	HealthCheckURL string         `json:"health_check_url,omitempty"`
	LastHeartbeat  time.Time      `json:"last_heartbeat"`
	Metadata       map[string]any `json:"metadata"`
	Tags           []string       `json:"tags"`
	RequiresAuth   bool           `json:"requires_auth"`
	APIKey         string         `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Endpoints      []Endpoint     `json:"endpoints"`
}

// Endpoint describes a single route a service exposes.
type Endpoint struct {
	ID            string    `json:"id"`
	ServiceID     string    `json:"service_id"`
	Path          string    `json:"path"`
	Method        string    `json:"method"`
	Description   string    `json:"description,omitempty"`
	RequiredRoles []string  `json:"required_roles"`
	IsPublic      bool      `json:"is_public"`
	RateLimit     *int      `json:"rate_limit,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// URL returns the base URL requests to this service are forwarded to.
func (s *Service) URL() string {
	return fmt.Sprintf("http://%s:%d%s", s.Host, s.Port, s.BasePath)
}

// MarshalJSON includes the computed url field in the wire representation.
func (s Service) MarshalJSON() ([]byte, error) {
	type alias Service
	return json.Marshal(struct {
		alias
		URL string `json:"url"`
	}{alias(s), s.URL()})
}

// Clone returns a deep copy. Store accessors hand out clones so callers never
// alias store-owned maps and slices.
func (s *Service) Clone() *Service {
	cp := *s
	if s.Metadata != nil {
		cp.Metadata = make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			cp.Metadata[k] = v
		}
	}
	if s.Tags != nil {
		cp.Tags = append([]string(nil), s.Tags...)
	}
	if s.Endpoints != nil {
		cp.Endpoints = make([]Endpoint, len(s.Endpoints))
		for i, ep := range s.Endpoints {
			cp.Endpoints[i] = ep.clone()
		}
	}
	return &cp
}

func (e Endpoint) clone() Endpoint {
	cp := e
	if e.RequiredRoles != nil {
		cp.RequiredRoles = append([]string(nil), e.RequiredRoles...)
	}
	if e.RateLimit != nil {
		v := *e.RateLimit
		cp.RateLimit = &v
	}
	return cp
}
