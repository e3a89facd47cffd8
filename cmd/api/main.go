package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/cache"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/config"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/database"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/handlers"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/log"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/repository"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/server"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/service"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/storage"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if err := database.EnsureSchema(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

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
	analysisService := service.NewAnalysisService(
		repository.NewImageRepository(dbPool), objectStore, analyzer, logger)

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, objectStore, analysisService, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
