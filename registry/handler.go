package registry

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/servicehub/errors"
	"github.com/kbukum/servicehub/logger"
	"github.com/kbukum/servicehub/observability"
	"github.com/kbukum/servicehub/server"
	"github.com/kbukum/servicehub/validation"
)

// Handler exposes the registry HTTP API.
type Handler struct {
	store   *Store
	monitor *Monitor
	version string
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewHandler creates the registry API handler.
func NewHandler(store *Store, monitor *Monitor, version string, metrics *observability.Metrics) *Handler {
	return &Handler{
		store:   store,
		monitor: monitor,
		version: version,
		log:     logger.WithComponent("registry-api"),
		metrics: metrics,
	}
}

// RegisterRoutes mounts the registry routes on the router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.info)

	api := r.Group("/api/registry")
	api.POST("/register", h.register)
	api.POST("/heartbeat", h.heartbeat)
	api.POST("/deregister/:id", h.deregister)
	api.GET("/services", h.listServices)
	api.GET("/services/:id", h.getService)
	api.GET("/services/by-name/:name", h.getServiceByName)
	api.PUT("/services/:id", h.updateService)
	api.DELETE("/services/:id", h.deleteService)
	api.GET("/health", h.checkStale)
}

func (h *Handler) info(c *gin.Context) {
	c.JSON(200, gin.H{
		"service": "service-registry",
		"status":  "healthy",
		"version": h.version,
	})
}

// register upserts a record by name: 201 for a new record, 200 when an
// existing record was replaced.
func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.InvalidInput("", "malformed JSON body").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	svc, created := h.store.Register(req)
	if created {
		h.metrics.RecordRegistration(c.Request.Context(), "created")
		server.RespondCreated(c, svc)
		return
	}
	h.metrics.RecordRegistration(c.Request.Context(), "updated")
	server.RespondOK(c, svc)
}

func (h *Handler) heartbeat(c *gin.Context) {
	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.InvalidInput("", "malformed JSON body").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	svc, err := h.store.Heartbeat(req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.metrics.RecordHeartbeat(c.Request.Context(), svc.Name)
	server.RespondOK(c, gin.H{"status": "ok", "message": "heartbeat received"})
}

func (h *Handler) deregister(c *gin.Context) {
	if err := h.store.Deregister(c.Param("id")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"status": "ok", "message": "service deregistered"})
}

func (h *Handler) listServices(c *gin.Context) {
	activeOnly := true
	if raw := c.Query("active_only"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			activeOnly = v
		}
	}
	server.RespondOK(c, h.store.List(activeOnly))
}

func (h *Handler) getService(c *gin.Context) {
	svc, err := h.store.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, svc)
}

func (h *Handler) getServiceByName(c *gin.Context) {
	svc, err := h.store.GetByName(c.Param("name"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, svc)
}

func (h *Handler) updateService(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.InvalidInput("", "malformed JSON body").WithCause(err))
		return
	}

	svc, err := h.store.Update(c.Param("id"), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, svc)
}

func (h *Handler) deleteService(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"status": "ok", "message": "service deleted"})
}

// checkStale runs an on-demand liveness sweep and returns its report.
func (h *Handler) checkStale(c *gin.Context) {
	report := h.monitor.Sweep(c.Request.Context())
	server.RespondOK(c, report)
}
