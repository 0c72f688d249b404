// Package api assembles the HTTP surface of the location subsystem.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fieldtrack/internal/api/handlers"
	"fieldtrack/internal/api/middleware"
)

type Router struct {
	sessionHandler  *handlers.SessionHandler
	presenceHandler *handlers.PresenceHandler
	nearbyHandler   *handlers.NearbyHandler
	trackHandler    *handlers.TrackHandler
	logger          *zap.Logger
}

func NewRouter(
	sessionHandler *handlers.SessionHandler,
	presenceHandler *handlers.PresenceHandler,
	nearbyHandler *handlers.NearbyHandler,
	trackHandler *handlers.TrackHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		sessionHandler:  sessionHandler,
		presenceHandler: presenceHandler,
		nearbyHandler:   nearbyHandler,
		trackHandler:    trackHandler,
		logger:          logger,
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.RequestLogger(r.logger))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	api.Use(middleware.DeviceAuth())
	{
		// Device endpoints: shift lifecycle and location publish.
		api.POST("/session/online", r.sessionHandler.GoOnline)
		api.POST("/session/pause", r.sessionHandler.Pause)
		api.POST("/session/resume", r.sessionHandler.Resume)
		api.POST("/session/end", r.sessionHandler.End)
		api.GET("/session", r.sessionHandler.GetOpen)
		api.POST("/location", r.sessionHandler.PublishLocation)

		// Dispatch endpoints: presence directory and proximity search.
		api.GET("/presence", r.presenceHandler.List)
		api.GET("/presence/:technician_id", r.presenceHandler.Get)
		api.GET("/nearby/technicians", r.nearbyHandler.Technicians)
		api.GET("/nearby/providers", r.nearbyHandler.Providers)

		// Supervision endpoints: per-session route history.
		api.GET("/track/:technician_id/:session_id", r.trackHandler.Polyline)
		api.GET("/track/:technician_id/:session_id/points", r.trackHandler.Points)
	}
}
