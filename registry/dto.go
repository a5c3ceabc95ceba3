package registry

// EndpointSpec describes an endpoint in a registration payload.
type EndpointSpec struct {
	Path          string   `json:"path" validate:"required"`
	Method        string   `json:"method" validate:"required,httpmethod"`
	Description   string   `json:"description"`
	RequiredRoles []string `json:"required_roles"`
	IsPublic      bool     `json:"is_public"`
	RateLimit     *int     `json:"rate_limit" validate:"omitempty,min=1"`
}

// RegisterRequest is the registration payload. Registering a name that already
// exists replaces the record in place (upsert).
type RegisterRequest struct {
	Name           string         `json:"name" validate:"required,svcname"`
	DisplayName    string         `json:"display_name" validate:"required"`
	Description    string         `json:"description"`
	Version        string         `json:"version" validate:"required"`
	Host           string         `json:"host" validate:"required"`
	Port           int            `json:"port" validate:"required,min=1,max=65535"`
	BasePath       string         `json:"base_path"`
	HealthCheckURL string         `json:"health_check_url"`
	Metadata       map[string]any `json:"metadata"`
	Tags           []string       `json:"tags"`
	RequiresAuth   *bool          `json:"requires_auth"`
	APIKey         string         `json:"api_key"`
	Endpoints      []EndpointSpec `json:"endpoints" validate:"dive"`
}

// HeartbeatRequest is the liveness signal payload.
type HeartbeatRequest struct {
	ServiceID string         `json:"service_id" validate:"required"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata"`
}

// UpdateRequest patches mutable fields of a record. Nil fields are left
// untouched.
type UpdateRequest struct {
	DisplayName *string         `json:"display_name"`
	Description *string         `json:"description"`
	IsActive    *bool           `json:"is_active"`
	Metadata    *map[string]any `json:"metadata"`
	Tags        *[]string       `json:"tags"`
}
