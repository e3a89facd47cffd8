package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/imaging"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/queue"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/repository"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/service"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/storage"
)

type imageStore interface {
	DownloadUpload(ctx context.Context, key string) ([]byte, error)
	SaveProcessed(ctx context.Context, key string, data []byte, contentType string) error
	RemoveUpload(ctx context.Context, key string) error
	ListUploads(ctx context.Context, prefix string) <-chan minio.ObjectInfo
	ProcessedBucket() string
}

type imageRecorder interface {
	Create(ctx context.Context, img models.Image) error
	Exists(ctx context.Context, userID, imageID string) (bool, error)
}

type analyzeEnqueuer interface {
	EnqueueAnalyze(ctx context.Context, userID, imageID, bucket, key string) error
}

// Processor turns queued tasks into pipeline work: ingest builds the
// renditions and writes the record, analyze runs the vision suite,
// sweep reclaims uploads that never got a record.
type Processor struct {
	store      imageStore
	repo       imageRecorder
	analysis   *service.AnalysisService
	publisher  analyzeEnqueuer
	watermark  string
	sweepGrace time.Duration
	logger     zerolog.Logger
}

func NewProcessor(
	store imageStore,
	repo imageRecorder,
	analysis *service.AnalysisService,
	publisher analyzeEnqueuer,
	watermark string,
	sweepGrace time.Duration,
	logger zerolog.Logger,
) *Processor {
	return &Processor{
		store:      store,
		repo:       repo,
		analysis:   analysis,
		publisher:  publisher,
		watermark:  watermark,
		sweepGrace: sweepGrace,
		logger:     logger.With().Str("component", "processor").Logger(),
	}
}

func (p *Processor) Handle(ctx context.Context, payload queue.TaskPayload) error {
	switch payload.Type {
	case queue.TaskIngest:
		return p.handleIngest(ctx, payload)
	case queue.TaskAnalyze:
		return p.handleAnalyze(ctx, payload)
	case queue.TaskSweep:
		return p.handleSweep(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

// handleIngest runs the full pipeline for one finished upload. Errors
// split two ways: broken input (foreign key, corrupt bytes) is logged
// and dropped because a retry can never fix it, while IO failures are
// returned so the queue redelivers the task.
func (p *Processor) handleIngest(ctx context.Context, payload queue.TaskPayload) error {
	key, err := storage.ParseUploadKey(payload.Key)
	if errors.Is(err, storage.ErrNotUpload) {
		p.logger.Debug().Str("key", payload.Key).Msg("object outside uploads prefix, skipping")
		return nil
	}
	if errors.Is(err, storage.ErrMalformedKey) {
		p.logger.Warn().Str("key", payload.Key).Msg("malformed upload key, dropping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("parse upload key: %w", err)
	}

	log := p.logger.With().
		Str("user_id", key.UserID).
		Str("image_id", key.ImageID).
		Logger()

	// Redelivery after a crash between record write and ack: the work
	// is already done, only the analyze hand-off may still be owed.
	exists, err := p.repo.Exists(ctx, key.UserID, key.ImageID)
	if err != nil {
		return fmt.Errorf("check existing record: %w", err)
	}
	if exists {
		log.Info().Msg("record already present, re-enqueueing analysis only")
		return p.enqueueAnalysis(ctx, key.UserID, key.ImageID)
	}

	data, err := p.store.DownloadUpload(ctx, payload.Key)
	if err != nil {
		return fmt.Errorf("download upload: %w", err)
	}

	src, format, err := imaging.Decode(data)
	if err != nil {
		log.Error().Err(err).Str("key", payload.Key).Msg("undecodable upload, dropping")
		return nil
	}

	renditions, err := imaging.Generate(src, p.watermark)
	if err != nil {
		log.Error().Err(err).Str("format", format).Msg("rendition generation failed, dropping")
		return nil
	}

	outputs := map[string][]byte{
		storage.ThumbnailKey(key.UserID, key.ImageID): renditions.Thumbnail,
		storage.MediumKey(key.UserID, key.ImageID):    renditions.Medium,
		storage.LargeKey(key.UserID, key.ImageID):     renditions.Large,
	}
	for outKey, encoded := range outputs {
		if err := p.store.SaveProcessed(ctx, outKey, encoded, imaging.ContentType); err != nil {
			return fmt.Errorf("save %s: %w", outKey, err)
		}
	}

	uploadedAt, err := key.UploadedAt()
	if err != nil {
		log.Warn().Err(err).Msg("unparseable key timestamp, using current time")
		uploadedAt = time.Now().Unix()
	}

	bounds := src.Bounds()
	record := models.Image{
		ImageID:          key.ImageID,
		UserID:           key.UserID,
		ImageName:        key.Filename,
		UploadTimestamp:  uploadedAt,
		Width:            bounds.Dx(),
		Height:           bounds.Dy(),
		FileSize:         int64(len(data)),
		ProcessingStatus: models.ProcessingCompleted,
		AnalysisStatus:   models.AnalysisPending,
	}
	if err := p.repo.Create(ctx, record); err != nil {
		return fmt.Errorf("create image record: %w", err)
	}

	log.Info().
		Str("format", format).
		Int("width", record.Width).
		Int("height", record.Height).
		Msg("image processed")

	return p.enqueueAnalysis(ctx, key.UserID, key.ImageID)
}

func (p *Processor) enqueueAnalysis(ctx context.Context, userID, imageID string) error {
	err := p.publisher.EnqueueAnalyze(ctx, userID, imageID,
		p.store.ProcessedBucket(), storage.LargeKey(userID, imageID))
	if err != nil {
		return fmt.Errorf("enqueue analysis: %w", err)
	}
	return nil
}

func (p *Processor) handleAnalyze(ctx context.Context, payload queue.TaskPayload) error {
	if payload.UserID == "" || payload.ImageID == "" {
		p.logger.Warn().Str("task_id", payload.TaskID).Msg("analyze task without identity, dropping")
		return nil
	}

	_, err := p.analysis.Analyze(ctx, payload.UserID, payload.ImageID, payload.Key)
	if errors.Is(err, repository.ErrImageNotFound) {
		// Record deleted between ingest and analysis.
		p.logger.Info().
			Str("user_id", payload.UserID).
			Str("image_id", payload.ImageID).
			Msg("record gone before analysis, dropping")
		return nil
	}
	return err
}

// handleSweep walks the uploads bucket and removes objects that are
// older than the grace period but never produced a record, typically
// presigned uploads that finished after processing had already failed.
func (p *Processor) handleSweep(ctx context.Context) error {
	cutoff := time.Now().Add(-p.sweepGrace)
	removed := 0

	for obj := range p.store.ListUploads(ctx, storage.UploadPrefix+"/") {
		if obj.Err != nil {
			return fmt.Errorf("list uploads: %w", obj.Err)
		}
		if obj.LastModified.After(cutoff) {
			continue
		}

		key, err := storage.ParseUploadKey(obj.Key)
		if err != nil {
			continue
		}

		exists, err := p.repo.Exists(ctx, key.UserID, key.ImageID)
		if err != nil {
			return fmt.Errorf("check record for %s: %w", obj.Key, err)
		}
		if exists {
			continue
		}

		if err := p.store.RemoveUpload(ctx, obj.Key); err != nil {
			p.logger.Warn().Err(err).Str("key", obj.Key).Msg("sweep removal failed")
			continue
		}
		removed++
	}

	p.logger.Info().Int("removed", removed).Msg("orphan sweep finished")
	return nil
}
