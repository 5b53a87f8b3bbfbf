package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler serves the liveness endpoint.
type Handler struct {
	service string
}

// NewHandler creates a new health Handler.
func NewHandler(service string) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers GET /health.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.service})
}
