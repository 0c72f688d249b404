// The agent binary simulates a technician's device: it restores any persisted
// shift, goes online, and publishes simulated locations until interrupted.
// It runs against the same stores as the server (in-process), which makes it
// a one-command demo of the full publish path.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fieldtrack/internal/agent"
	"fieldtrack/internal/clientstate"
	"fieldtrack/internal/config"
	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/logger"
	"fieldtrack/internal/repository/sqlite"
	"fieldtrack/internal/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	technicianID := flag.String("technician", "", "technician id (empty runs anonymous until login)")
	displayName := flag.String("name", "", "display name shown in the presence directory")
	affiliation := flag.String("affiliation", "", "affiliation shown in the presence directory")
	startLat := flag.Float64("lat", 16.0471, "starting latitude")
	startLng := flag.Float64("lng", 108.2062, "starting longitude")
	dropout := flag.Float64("dropout", 0.1, "fraction of samples that fail")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := sqlite.Open(cfg.Storage.Path, zlog)
	if err != nil {
		zlog.Fatal("failed to open storage", zap.Error(err))
	}
	defer db.Close()

	states, err := clientstate.OpenSQLite(cfg.Storage.ClientStatePath)
	if err != nil {
		zlog.Fatal("failed to open client state store", zap.Error(err))
	}
	defer states.Close()

	presenceService := services.NewPresenceService(sqlite.NewPresenceRepository(db), zlog)
	trackService := services.NewTrackService(sqlite.NewTrackRepository(db), zlog)
	sessionService := services.NewSessionService(sqlite.NewSessionRepository(db), presenceService, zlog)

	start := entities.NewGeoPoint(*startLat, *startLng)
	if err := start.Validate(); err != nil {
		zlog.Fatal("invalid starting point", zap.Error(err))
	}
	sampler := agent.NewSimulatedSampler(start, 0.0005, *dropout, time.Now().UnixNano())

	publisher := agent.NewPublisher(cfg.Publisher.Interval, sampler, trackService, presenceService, zlog)
	controller := agent.NewController(states, sessionService, publisher,
		*technicianID, *displayName, *affiliation, zlog)

	ctx := context.Background()
	if err := controller.Restore(ctx); err != nil {
		zlog.Fatal("failed to restore shift", zap.Error(err))
	}

	if controller.Phase() == agent.PhaseOffline {
		if err := controller.GoOnline(ctx); err != nil {
			zlog.Fatal("failed to go online", zap.Error(err))
		}
	}
	zlog.Info("agent running",
		zap.String("phase", string(controller.Phase())),
		zap.String("session_id", controller.Session().ID),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// First interrupt pauses the shift (state survives a restart); a second
	// ends it cleanly.
	zlog.Info("pausing shift; interrupt again to end it")
	if err := controller.Pause(ctx); err != nil {
		zlog.Error("pause failed", zap.Error(err))
	}

	select {
	case <-quit:
		if err := controller.EndShift(ctx); err != nil {
			zlog.Error("end shift failed", zap.Error(err))
		}
		zlog.Info("shift ended")
	case <-time.After(time.Hour):
	}
}
