package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appmanifest "github.com/wastetrack/backend/internal/application/manifest"
	"github.com/wastetrack/backend/internal/infrastructure/cache"
	"github.com/wastetrack/backend/internal/infrastructure/config"
	"github.com/wastetrack/backend/internal/infrastructure/logger"
	"github.com/wastetrack/backend/internal/infrastructure/persistence"
	"github.com/wastetrack/backend/internal/infrastructure/telemetry"
	"github.com/wastetrack/backend/internal/interfaces/http/handler"
	"github.com/wastetrack/backend/internal/interfaces/http/middleware"
	"github.com/wastetrack/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting WasteTrack backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing is optional; the service runs fine without a collector.
	tracer, err := telemetry.Setup(context.Background(), cfg.Telemetry)
	if err != nil {
		log.Fatal("Failed to set up telemetry", zap.Error(err))
	}
	if tracer != nil {
		defer func() {
			if err := tracer.Shutdown(context.Background()); err != nil {
				log.Error("Error shutting down telemetry", zap.Error(err))
			}
		}()
		log.Info("Telemetry enabled", zap.String("endpoint", cfg.Telemetry.CollectorEndpoint))
	}

	newDatabase := persistence.NewDatabase
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		newDatabase = persistence.NewDatabaseWithTracing
	}
	db, err := newDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Historical-state cache. Optional: a nil cache means every
	// point-in-time query replays from the log.
	var stateCache appmanifest.StateCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewStateCache(cfg.Redis, cfg.Snapshot.CacheTTL, log)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing redis connection", zap.Error(err))
			}
		}()
		stateCache = redisCache
		log.Info("State cache enabled",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Duration("ttl", cfg.Snapshot.CacheTTL),
		)
	}

	// Stores and unit of work
	eventStore := persistence.NewGormEventStore(db.DB)
	manifestRepo := persistence.NewGormManifestRepository(db.DB)
	revisionRepo := persistence.NewGormRevisionRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Application services
	manifestService := appmanifest.NewManifestService(uow, manifestRepo, eventStore, log)
	streamService := appmanifest.NewStreamService(eventStore, manifestRepo, stateCache, log)
	revisionService := appmanifest.NewRevisionService(uow, manifestRepo, revisionRepo, eventStore, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}
	if tracer != nil {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.RequestID())
	if tracer != nil {
		engine.Use(middleware.TracingAttributes())
	}
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewSystemHandler(db.DB)).
		Register(handler.NewManifestHandler(manifestService, streamService)).
		Register(handler.NewRevisionHandler(revisionService, cfg.Snapshot.BackfillBatchSize)).
		Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
