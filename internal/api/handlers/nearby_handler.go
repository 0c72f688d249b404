package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/geo"
	"fieldtrack/internal/services"
)

// NearbyHandler serves proximity queries. Both endpoints take the same query
// parameters: center ("lat,lng"), radius_km, limit, and (providers only)
// owner.
type NearbyHandler struct {
	nearby *services.NearbyService
}

func NewNearbyHandler(nearby *services.NearbyService) *NearbyHandler {
	return &NearbyHandler{nearby: nearby}
}

// Technicians handles GET /api/v1/nearby/technicians.
func (h *NearbyHandler) Technicians(c *gin.Context) {
	q, err := parseNearbyQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	matches, err := h.nearby.Technicians(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// Providers handles GET /api/v1/nearby/providers.
func (h *NearbyHandler) Providers(c *gin.Context) {
	q, err := parseNearbyQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	q.Owner = c.Query("owner")

	matches, err := h.nearby.Providers(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

func parseNearbyQuery(c *gin.Context) (geo.Query, error) {
	center, err := geo.ParseLatLng(c.Query("center"))
	if err != nil {
		return geo.Query{}, err
	}

	q := geo.Query{Center: center}
	if raw := c.Query("radius_km"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			return geo.Query{}, fmt.Errorf("%w: radius_km %q", entities.ErrInvalidFormat, raw)
		}
		q.RadiusKm = radius
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return geo.Query{}, fmt.Errorf("%w: limit %q", entities.ErrInvalidFormat, raw)
		}
		q.Limit = limit
	}
	return q, nil
}
