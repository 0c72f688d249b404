package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"fieldtrack/internal/api/middleware"
	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/services"
)

// SessionHandler exposes the shift lifecycle and the location publish
// endpoint to devices. The technician identity always comes from auth, never
// the request body, so a device cannot write another technician's shift.
type SessionHandler struct {
	sessions *services.SessionService
	tracks   *services.TrackService
	presence *services.PresenceService
}

func NewSessionHandler(
	sessions *services.SessionService,
	tracks *services.TrackService,
	presence *services.PresenceService,
) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		tracks:   tracks,
		presence: presence,
	}
}

type goOnlineRequest struct {
	DisplayName     string `json:"display_name"`
	AffiliationName string `json:"affiliation_name"`
}

// GoOnline handles POST /api/v1/session/online. Opens a shift for the
// authenticated technician; any stale open session is superseded.
func (h *SessionHandler) GoOnline(c *gin.Context) {
	var req goOnlineRequest
	// Body is optional; names just enrich the presence record.
	_ = c.ShouldBindJSON(&req)

	technicianID := middleware.GetTechnicianID(c)
	session, err := h.sessions.Open(c.Request.Context(), technicianID, req.DisplayName, req.AffiliationName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Pause handles POST /api/v1/session/pause.
func (h *SessionHandler) Pause(c *gin.Context) {
	if err := h.requireOpenSession(c); err != nil {
		return
	}
	if err := h.sessions.Pause(c.Request.Context(), middleware.GetTechnicianID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(entities.PresenceStatusPaused)})
}

// Resume handles POST /api/v1/session/resume.
func (h *SessionHandler) Resume(c *gin.Context) {
	if err := h.requireOpenSession(c); err != nil {
		return
	}
	if err := h.sessions.Resume(c.Request.Context(), middleware.GetTechnicianID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(entities.PresenceStatusOnline)})
}

// End handles POST /api/v1/session/end. Idempotent: ending with no open shift
// still forces the presence record offline.
func (h *SessionHandler) End(c *gin.Context) {
	if err := h.sessions.End(c.Request.Context(), middleware.GetTechnicianID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(entities.PresenceStatusOffline)})
}

// GetOpen handles GET /api/v1/session — the technician's current open
// session, for a device checking whether it can re-attach.
func (h *SessionHandler) GetOpen(c *gin.Context) {
	session, err := h.sessions.GetOpen(c.Request.Context(), middleware.GetTechnicianID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type publishLocationRequest struct {
	// No binding:"required" on the coordinates: 0 is a legitimate latitude
	// and longitude, and required would reject it. Range validation happens
	// on the assembled GeoPoint instead.
	Lat        *float64   `json:"lat"`
	Lng        *float64   `json:"lng"`
	CapturedAt *time.Time `json:"captured_at"`
}

// PublishLocation handles POST /api/v1/location — a device pushing one sample
// over HTTP instead of the in-process publisher. The sample fans out to the
// track log and the presence directory independently: one write failing does
// not suppress the other, and the response reports each outcome.
func (h *SessionHandler) PublishLocation(c *gin.Context) {
	var req publishLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entities.ErrInvalidFormat, err))
		return
	}
	if req.Lat == nil || req.Lng == nil {
		respondError(c, fmt.Errorf("%w: lat and lng are required", entities.ErrInvalidFormat))
		return
	}

	point := entities.NewGeoPoint(*req.Lat, *req.Lng)
	if err := point.Validate(); err != nil {
		respondError(c, err)
		return
	}

	technicianID := middleware.GetTechnicianID(c)
	session, err := h.sessions.GetOpen(c.Request.Context(), technicianID)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "no open session"})
			return
		}
		respondError(c, err)
		return
	}

	capturedAt := time.Now()
	if req.CapturedAt != nil {
		capturedAt = *req.CapturedAt
	}

	ctx := c.Request.Context()
	var wg sync.WaitGroup
	var trackErr, presenceErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		trackErr = h.tracks.Append(ctx, entities.NewTrackPoint(technicianID, session.ID, point, capturedAt))
	}()
	go func() {
		defer wg.Done()
		loc := point
		_, presenceErr = h.presence.Upsert(ctx, technicianID, entities.PresencePatch{Location: &loc})
	}()
	wg.Wait()

	if trackErr != nil || presenceErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"track_error":    errString(trackErr),
			"presence_error": errString(presenceErr),
		})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"session_id": session.ID, "captured_at": capturedAt})
}

// requireOpenSession rejects lifecycle calls from technicians with no open
// session; responds on failure and reports whether it did.
func (h *SessionHandler) requireOpenSession(c *gin.Context) error {
	_, err := h.sessions.GetOpen(c.Request.Context(), middleware.GetTechnicianID(c))
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "no open session"})
			return err
		}
		respondError(c, err)
		return err
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
