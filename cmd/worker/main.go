package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/cache"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/config"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/database"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/jobs"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/log"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/notify"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/queue"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/repository"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/service"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/storage"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/vision"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()
	if err := database.EnsureSchema(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer redisClient.Close()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBuckets(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure buckets failed")
	}

	visionClient, err := vision.NewRekognitionClient(ctx, cfg.Vision)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init vision client")
	}
	analyzer := vision.NewAnalyzer(visionClient, cfg.Vision.MaxLabels, cfg.Vision.MinConfidence, logger)

	imageRepo := repository.NewImageRepository(dbPool)
	analysisService := service.NewAnalysisService(imageRepo, objectStore, analyzer, logger)
	publisher := queue.NewPublisher(redisClient, cfg.Redis.Stream)

	processor := worker.NewProcessor(
		objectStore,
		imageRepo,
		analysisService,
		publisher,
		cfg.Upload.WatermarkText,
		cfg.Sweep.GracePeriod,
		logger,
	)
	consumer := queue.NewConsumer(
		redisClient,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Queues.ClaimInterval,
		logger,
		processor,
	)
	listener := notify.NewListener(objectStore.Client(), cfg.Storage.BucketUploads, publisher, logger)

	scheduler := jobs.NewScheduler(publisher, cfg.Sweep, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()
	go func() {
		if err := listener.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("listener stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	scheduler.Stop()
	time.Sleep(500 * time.Millisecond)
}
