package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldtrack/internal/services"
)

// TrackHandler serves track-log reads for the supervision views.
type TrackHandler struct {
	tracks *services.TrackService
}

func NewTrackHandler(tracks *services.TrackService) *TrackHandler {
	return &TrackHandler{tracks: tracks}
}

// Polyline handles GET /api/v1/track/:technician_id/:session_id. The response
// is the session's route in capture order; an unknown session yields an empty
// polyline rather than an error, matching what a map overlay wants to draw.
func (h *TrackHandler) Polyline(c *gin.Context) {
	technicianID := c.Param("technician_id")
	sessionID := c.Param("session_id")

	polyline, err := h.tracks.Polyline(c.Request.Context(), technicianID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"technician_id": technicianID,
		"session_id":    sessionID,
		"polyline":      polyline,
		"count":         len(polyline),
	})
}

// Points handles GET /api/v1/track/:technician_id/:session_id/points — the
// full samples including capture timestamps.
func (h *TrackHandler) Points(c *gin.Context) {
	points, err := h.tracks.Points(c.Request.Context(), c.Param("technician_id"), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points, "count": len(points)})
}
