package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/arjunmehta/roadwatch-backend/api/routes"
	"github.com/arjunmehta/roadwatch-backend/internal/auth"
	"github.com/arjunmehta/roadwatch-backend/internal/detection"
	"github.com/arjunmehta/roadwatch-backend/internal/media"
	"github.com/arjunmehta/roadwatch-backend/internal/officers"
	"github.com/arjunmehta/roadwatch-backend/internal/violations"
	"github.com/arjunmehta/roadwatch-backend/pkg/auth/session"
	"github.com/arjunmehta/roadwatch-backend/pkg/config"
	"github.com/arjunmehta/roadwatch-backend/pkg/db"
	"github.com/arjunmehta/roadwatch-backend/pkg/logger"
	"github.com/arjunmehta/roadwatch-backend/pkg/metrics"
	"github.com/arjunmehta/roadwatch-backend/pkg/migrate"
	"github.com/arjunmehta/roadwatch-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		OfficerRepo:    officers.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	blobStore, err := media.NewDiskStore(cfg.Media.UploadDir)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload directory", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.NewRepository(dbClient.DB()), blobStore, cfg.Media.MaxUploadBytes())
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	violationsService, err := violations.NewService(violations.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create violations service", err)
		os.Exit(1)
	}

	detectionClient, err := detection.NewClient(cfg.ML, blobStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create detection client", err)
		os.Exit(1)
	}

	interpreter, err := detection.NewInterpreter(logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create interpreter", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	pipeline, err := detection.NewPipeline(mediaService, detectionClient, interpreter, violationsService, pipelineMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create detection pipeline", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			SessionManager:  sessionManager,
			AuthService:     authService,
			RegisterService: registerService,
			Violations:      violationsService,
			Media:           mediaService,
			Pipeline:        pipeline,
			Registry:        registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdown
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
