package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"go-bidtrack-backend/config"
	_ "go-bidtrack-backend/docs" // Important for Swagger
	v1 "go-bidtrack-backend/internal/delivery/http/v1"
	"go-bidtrack-backend/internal/repository/postgres"
	"go-bidtrack-backend/internal/usecase"
	"go-bidtrack-backend/pkg/database"
	"go-bidtrack-backend/pkg/logger"
	"go-bidtrack-backend/pkg/notify"
	"go-bidtrack-backend/pkg/redis"
	"go-bidtrack-backend/pkg/storage"
)

// @title           Bid Tracking Backend API
// @version         1.0
// @description     Backend for the freelance bid tracking dashboard using Clean Architecture.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init("bidtrack-api")
	logger.Log.Info("Starting bid tracking backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (notification transport + rate limiting)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, notifications disabled", "error", err)
	}
	defer redis.Close()

	var dispatcher *notify.Dispatcher
	if client := redis.Client(); client != nil {
		dispatcher = notify.NewDispatcher(notify.NewRedisPublisher(client))
	}

	// 5. Setup attachment storage (best-effort collaborator)
	var attachments storage.AttachmentStore
	if cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(context.Background(), storage.S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			logger.Log.Warn("Attachment storage unavailable, orphaned files will be kept", "error", err)
		} else {
			attachments = store
		}
	}

	// 6. Setup Repositories
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	auditRepo := postgres.NewAuditRepository(dbPool)
	catalogRepo := postgres.NewCatalogRepository(dbPool)
	targetRepo := postgres.NewTargetRepository(dbPool)
	statsRepo := postgres.NewStatsRepository(dbPool)

	// 7. Setup UseCases
	validate := validator.New()
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, auditRepo, catalogRepo, dispatcher, attachments, validate)
	targetUC := usecase.NewTargetUsecase(targetRepo, catalogRepo, dispatcher, validate)
	statsUC := usecase.NewStatsUsecase(statsRepo, catalogRepo)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ApplicationUC: applicationUC,
		StatsUC:       statsUC,
		TargetUC:      targetUC,
		Config:        cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
