package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/hotelsense/internal/api"
	"github.com/timmy/hotelsense/internal/api/handler"
	"github.com/timmy/hotelsense/internal/config"
	"github.com/timmy/hotelsense/internal/events"
	"github.com/timmy/hotelsense/internal/logger"
	"github.com/timmy/hotelsense/internal/repository"
	"github.com/timmy/hotelsense/internal/service"
	"github.com/timmy/hotelsense/internal/storage"
)

func main() {
	appLogger := logger.New(logger.LoadFromEnv("hotelsense-api"))
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid config")
	}

	ctx := context.Background()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to get database handle")
	}
	defer sqlDB.Close()

	objectStorage, err := storage.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	images := repository.NewImageRepository(db)
	contexts := repository.NewImageContextRepository(db)
	rooms := repository.NewRoomRepository(db)
	amenities := repository.NewAmenityRepository(db)
	hotels := repository.NewHotelRepository(db)

	classifier := service.NewVisionClassifier(&cfg.VLM)
	// Manual stage runs publish continuation events like the worker.
	publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers)
	defer publisher.Close()

	topics := cfg.Kafka.Topics
	stages := handler.NewStageHandler(
		service.NewIngestService(images, contexts, objectStorage, classifier, publisher, topics.ImagesProcessed),
		service.NewRoomService(images, rooms, objectStorage, classifier, publisher, topics.RoomsProcessed),
		service.NewAmenityService(images, rooms, amenities, objectStorage, classifier, publisher,
			topics.AmenityProcessed, cfg.Pipeline.MaxAmenities),
		service.NewRatingService(images, hotels, objectStorage, classifier),
	)

	router := api.SetupRouter(
		handler.NewHealthHandler(sqlDB),
		stages,
		handler.NewHotelHandler(hotels, images, rooms, amenities),
		cfg.Server.Mode,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":  cfg.Server.Port,
			"mode":  cfg.Server.Mode,
			"model": classifier.GetModel(),
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
