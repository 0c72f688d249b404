package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fieldtrack/internal/api"
	"fieldtrack/internal/api/handlers"
	"fieldtrack/internal/config"
	"fieldtrack/internal/logger"
	"fieldtrack/internal/repository"
	"fieldtrack/internal/repository/memory"
	"fieldtrack/internal/repository/sqlite"
	"fieldtrack/internal/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
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

	repos, closeStore, err := buildRepositories(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeStore()

	presenceService := services.NewPresenceService(repos.presence, zlog)
	trackService := services.NewTrackService(repos.tracks, zlog)
	sessionService := services.NewSessionService(repos.sessions, presenceService, zlog)
	nearbyService := services.NewNearbyService(repos.presence, repos.providers, cfg.Geo.DefaultRadiusKm, zlog)

	router := api.NewRouter(
		handlers.NewSessionHandler(sessionService, trackService, presenceService),
		handlers.NewPresenceHandler(presenceService),
		handlers.NewNearbyHandler(nearbyService),
		handlers.NewTrackHandler(trackService),
		zlog,
	)

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	router.Setup(engine)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("backend", cfg.Storage.Backend),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error("forced shutdown", zap.Error(err))
	}
}

type repositories struct {
	sessions  repository.SessionRepository
	presence  repository.PresenceRepository
	tracks    repository.TrackRepository
	providers repository.ProviderRepository
}

func buildRepositories(cfg *config.Config, zlog *zap.Logger) (*repositories, func(), error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		db, err := sqlite.Open(cfg.Storage.Path, zlog)
		if err != nil {
			return nil, nil, err
		}
		return &repositories{
			sessions:  sqlite.NewSessionRepository(db),
			presence:  sqlite.NewPresenceRepository(db),
			tracks:    sqlite.NewTrackRepository(db),
			providers: sqlite.NewProviderRepository(db),
		}, func() { db.Close() }, nil
	default:
		return &repositories{
			sessions:  memory.NewSessionRepository(),
			presence:  memory.NewPresenceRepository(cfg.Geo.GeohashPrecision, cfg.Geo.MaxCoverCells),
			tracks:    memory.NewTrackRepository(),
			providers: memory.NewProviderRepository(),
		}, func() {}, nil
	}
}
