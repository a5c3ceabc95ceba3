package gateway

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/servicehub/server"
)

// Handler exposes the gateway management API and mounts the proxy route.
type Handler struct {
	cache       *Cache
	proxy       *Proxy
	registryURL string
	version     string
}

// NewHandler creates the gateway API handler.
func NewHandler(cache *Cache, proxy *Proxy, registryURL, version string) *Handler {
	return &Handler{
		cache:       cache,
		proxy:       proxy,
		registryURL: registryURL,
		version:     version,
	}
}

// RegisterRoutes mounts the gateway routes on the router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.info)
	r.GET("/gateway/services", h.listServices)
	r.POST("/gateway/refresh-services", h.refreshServices)
	r.Any("/api/:service/*path", h.proxy.Handle)
}

func (h *Handler) info(c *gin.Context) {
	c.JSON(200, gin.H{
		"service":      "api-gateway",
		"status":       "healthy",
		"version":      h.version,
		"registry_url": h.registryURL,
	})
}

// listServices forces a refresh and returns the routable service set. A
// refresh failure still returns the stale set; only a cold cache errors.
func (h *Handler) listServices(c *gin.Context) {
	if _, err := h.cache.Refresh(c.Request.Context()); err != nil {
		if _, fetchedAt := h.cache.Snapshot(); fetchedAt.IsZero() {
			server.RespondWithError(c, err)
			return
		}
	}
	services, fetchedAt := h.cache.Snapshot()
	server.RespondOK(c, gin.H{
		"services":   services,
		"count":      len(services),
		"fetched_at": fetchedAt,
	})
}

// refreshServices forces a cache refresh and reports the resulting size.
func (h *Handler) refreshServices(c *gin.Context) {
	count, err := h.cache.Refresh(c.Request.Context())
	if err != nil {
		if _, fetchedAt := h.cache.Snapshot(); fetchedAt.IsZero() {
			server.RespondWithError(c, err)
			return
		}
	}
	_, fetchedAt := h.cache.Snapshot()
	server.RespondOK(c, gin.H{
		"status":         "ok",
		"services_count": count,
		"updated_at":     fetchedAt,
	})
}
