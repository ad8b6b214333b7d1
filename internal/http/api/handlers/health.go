package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/MailRelayGateway/internal/store"
)

// HealthHandler reports store reachability.
type HealthHandler struct {
	store store.Store
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(s store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

// Healthz answers ok when the document store is reachable.
func (h *HealthHandler) Healthz(c *gin.Context) {
	if _, _, errLoad := h.store.Load(c.Request.Context()); errLoad != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
