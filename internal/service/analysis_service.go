package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/storage"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/vision"
)

type analysisRepo interface {
	ApplyAnalysis(ctx context.Context, userID, imageID string, tags []string, analysis models.AIAnalysis) error
}

type renditionReader interface {
	DownloadProcessed(ctx context.Context, key string) ([]byte, error)
}

type AnalysisService struct {
	repo     analysisRepo
	store    renditionReader
	analyzer *vision.Analyzer
	log      zerolog.Logger
}

func NewAnalysisService(repo analysisRepo, store renditionReader, analyzer *vision.Analyzer, log zerolog.Logger) *AnalysisService {
	return &AnalysisService{
		repo:     repo,
		store:    store,
		analyzer: analyzer,
		log:      log.With().Str("component", "analysis_service").Logger(),
	}
}

// Analyze runs the vision suite over a stored rendition and folds the
// results into the record. Individual detections may come back empty
// when a detector fails; only a missing rendition or a failed record
// update fails the whole run.
func (s *AnalysisService) Analyze(ctx context.Context, userID, imageID, key string) (models.AIAnalysis, error) {
	if userID == "" || imageID == "" {
		return models.AIAnalysis{}, ErrImageIDRequired
	}
	if key == "" {
		key = storage.LargeKey(userID, imageID)
	} else if !strings.HasPrefix(key, storage.ProcessedPrefix+"/"+userID+"/") {
		// A caller may only point the analyzer at their own renditions.
		return models.AIAnalysis{}, ErrKeyNotOwned
	}

	image, err := s.store.DownloadProcessed(ctx, key)
	if err != nil {
		return models.AIAnalysis{}, fmt.Errorf("%w: download %s: %v", ErrUpstream, key, err)
	}

	analysis := s.analyzer.Analyze(ctx, image)
	tags := vision.Tags(analysis)

	if err := s.repo.ApplyAnalysis(ctx, userID, imageID, tags, analysis); err != nil {
		return models.AIAnalysis{}, fmt.Errorf("apply analysis: %w", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Str("image_id", imageID).
		Int("labels", len(analysis.Labels)).
		Int("faces", analysis.FaceCount).
		Bool("is_safe", analysis.IsSafe).
		Msg("image analyzed")

	return analysis, nil
}
