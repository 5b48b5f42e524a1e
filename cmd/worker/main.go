package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/hotelsense/internal/config"
	"github.com/timmy/hotelsense/internal/events"
	"github.com/timmy/hotelsense/internal/logger"
	"github.com/timmy/hotelsense/internal/metrics"
	"github.com/timmy/hotelsense/internal/repository"
	"github.com/timmy/hotelsense/internal/service"
	"github.com/timmy/hotelsense/internal/storage"
	"golang.org/x/sync/errgroup"
)

const stageAll = "all"

func main() {
	appLogger := logger.New(logger.LoadFromEnv("hotelsense-worker"))
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	stage := flag.String("stage", stageAll, "Stage to run: ingest, rooms, amenities, rating or all")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	stages, err := selectStages(*stage)
	if err != nil {
		appLogger.WithError(err).Fatal("Invalid -stage")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

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
	publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers)
	defer publisher.Close()

	topics := cfg.Kafka.Topics
	handlers := map[string]struct {
		topic   string
		handler events.Handler
	}{
		service.StageIngest: {
			topic: topics.ImageCreated,
			handler: ingestHandler(service.NewIngestService(
				images, contexts, objectStorage, classifier, publisher, topics.ImagesProcessed)),
		},
		service.StageRooms: {
			topic: topics.ImagesProcessed,
			handler: roomsHandler(service.NewRoomService(
				images, rooms, objectStorage, classifier, publisher, topics.RoomsProcessed)),
		},
		service.StageAmenities: {
			topic: topics.RoomsProcessed,
			handler: amenitiesHandler(service.NewAmenityService(
				images, rooms, amenities, objectStorage, classifier, publisher,
				topics.AmenityProcessed, cfg.Pipeline.MaxAmenities)),
		},
		service.StageRating: {
			topic:   topics.AmenityProcessed,
			handler: ratingHandler(service.NewRatingService(images, hotels, objectStorage, classifier)),
		},
	}

	appLogger.WithFields(logger.Fields{
		"stages":  stages,
		"brokers": cfg.Kafka.Brokers,
		"model":   classifier.GetModel(),
	}).Info("Starting worker")

	var consumers []func(context.Context) error
	for _, name := range stages {
		h := handlers[name]
		consumer := events.NewConsumer(events.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   h.topic,
			GroupID: groupID(cfg.Kafka.GroupIDPrefix, name),
		}, h.handler)
		consumers = append(consumers, func(ctx context.Context) error {
			return consumer.Run(logger.SetStage(logger.SetComponent(ctx, "worker"), name, ""))
		})
	}

	serveMetrics := func(ctx context.Context) error {
		return metrics.Serve(ctx, cfg.Metrics.Addr)
	}
	if err := runConsumers(ctx, serveMetrics, consumers); err != nil {
		appLogger.WithError(err).Error("Worker stopped with error")
		os.Exit(1)
	}
	appLogger.Info("Worker exited")
}

// runConsumers runs every consumer alongside the metrics server. The metrics
// server stops once all consumers have returned; any error cancels the rest.
func runConsumers(ctx context.Context, serveMetrics func(context.Context) error, consumers []func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	metricsCtx, stopMetrics := context.WithCancel(gctx)
	defer stopMetrics()

	g.Go(func() error {
		return serveMetrics(metricsCtx)
	})
	g.Go(func() error {
		defer stopMetrics()
		cg, cctx := errgroup.WithContext(gctx)
		for _, run := range consumers {
			cg.Go(func() error {
				return run(cctx)
			})
		}
		return cg.Wait()
	})
	return g.Wait()
}

// selectStages expands the -stage flag into the stages to run, in pipeline
// order.
func selectStages(stage string) ([]string, error) {
	all := []string{service.StageIngest, service.StageRooms, service.StageAmenities, service.StageRating}
	if stage == stageAll {
		return all, nil
	}
	for _, s := range all {
		if s == stage {
			return []string{s}, nil
		}
	}
	return nil, fmt.Errorf("unknown stage %q", stage)
}

func groupID(prefix, stage string) string {
	if prefix == "" {
		return stage
	}
	return prefix + "-" + stage
}
