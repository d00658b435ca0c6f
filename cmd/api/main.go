package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/apranova/bootcamp-api/internal/config"
	"github.com/apranova/bootcamp-api/internal/database"
	"github.com/apranova/bootcamp-api/internal/handler"
	"github.com/apranova/bootcamp-api/internal/middleware"
	"github.com/apranova/bootcamp-api/internal/models"
	"github.com/apranova/bootcamp-api/internal/repository"
	"github.com/apranova/bootcamp-api/internal/router"
	"github.com/apranova/bootcamp-api/internal/service"
	cloud "github.com/apranova/bootcamp-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Track{},
		&models.Project{},
		&models.ProjectStep{},
		&models.Deliverable{},
		&models.Student{},
		&models.StudentProgress{},
		&models.Submission{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	trackRepo := repository.NewTrackRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	cache := service.NewTrackViewCache(redisClient, cfg.TrackCacheTTL, logger)
	activityRecorder := service.NewActivityService(activityRepo, logger)
	trackService := service.NewTrackService(trackRepo, progressRepo, submissionRepo, cache, logger)
	progressService := service.NewProgressService(progressRepo, trackRepo, trackService, cache, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, trackRepo, validate, uploader, cache, logger)
	reviewService := service.NewReviewService(submissionRepo, validate, activityRecorder, cache, logger)
	seedService, err := service.NewSeedService(trackRepo, activityRecorder, cfg.SeedEnabled, cfg.SeedToken, logger)
	if err != nil {
		log.Fatalf("failed to create seed service: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		TrackHandler:      handler.NewTrackHandler(trackService, logger),
		ProgressHandler:   handler.NewProgressHandler(progressService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, reviewService, logger),
		SeedHandler:       handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
