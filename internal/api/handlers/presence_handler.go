package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldtrack/internal/services"
)

// PresenceHandler serves dispatch reads of the presence directory.
type PresenceHandler struct {
	presence *services.PresenceService
}

func NewPresenceHandler(presence *services.PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// List handles GET /api/v1/presence — every technician's current record.
func (h *PresenceHandler) List(c *gin.Context) {
	records, err := h.presence.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presence": records, "count": len(records)})
}

// Get handles GET /api/v1/presence/:technician_id.
func (h *PresenceHandler) Get(c *gin.Context) {
	record, err := h.presence.Get(c.Request.Context(), c.Param("technician_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
