package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/snowch/vast-sp-console/internal/application/service"
	"github.com/snowch/vast-sp-console/pkg/constants"
)

// HealthHandler provides liveness and status endpoints.
type HealthHandler struct {
	schemaService service.SchemaAppService
	started       time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(schemaService service.SchemaAppService) *HealthHandler {
	return &HealthHandler{schemaService: schemaService, started: time.Now()}
}

// Health reports service liveness plus the store connection state. The
// service is healthy even when the store is degraded; the store state is
// informational.
func (h *HealthHandler) Health(c *gin.Context) {
	info := h.schemaService.ConnectionInfo(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   constants.ServiceName,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"database":  info.Status,
	})
}
