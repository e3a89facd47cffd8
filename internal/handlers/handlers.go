package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/config"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/middleware"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/repository"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/service"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/storage"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	upload   *service.UploadService
	gallery  *service.GalleryService
	deletion *service.DeletionService
	analysis *service.AnalysisService
	db       *pgxpool.Pool
	cache    *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	analysis *service.AnalysisService,
	cfg *config.AppConfig,
) HandlerSet {
	imageRepo := repository.NewImageRepository(db)
	urls := storage.NewURLBuilder(cfg.Storage)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		upload:   service.NewUploadService(store, cfg.Upload, log),
		gallery:  service.NewGalleryService(imageRepo, urls, log),
		deletion: service.NewDeletionService(imageRepo, store, log),
		analysis: analysis,
		db:       db,
		cache:    cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	images := router.Group("/v1/images")
	images.Use(middleware.Auth(h.cfg.Security.JWTSecret))
	{
		images.POST("/upload-url", h.IssueUploadURL)
		images.GET("", h.ListImages)
		images.GET("/search", h.SearchImages)
		images.DELETE("/:imageId", h.DeleteImage)
		images.POST("/:imageId/analyze", h.AnalyzeImage)
	}
}
