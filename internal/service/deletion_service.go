package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/storage"
)

type deletionRepo interface {
	Get(ctx context.Context, userID, imageID string) (models.Image, error)
	Delete(ctx context.Context, userID, imageID string) error
}

type objectRemover interface {
	RemoveUpload(ctx context.Context, key string) error
	RemoveProcessed(ctx context.Context, key string) error
}

type DeletionService struct {
	repo  deletionRepo
	store objectRemover
	log   zerolog.Logger
}

func NewDeletionService(repo deletionRepo, store objectRemover, log zerolog.Logger) *DeletionService {
	return &DeletionService{
		repo:  repo,
		store: store,
		log:   log.With().Str("component", "deletion_service").Logger(),
	}
}

type DeleteResult struct {
	ImageID      string          `json:"imageId"`
	DeletedFiles map[string]bool `json:"deletedFiles"`
}

// Delete removes the original, every rendition, and finally the
// record. Object removals are best effort: a missing or unreachable
// object is logged and skipped so a half-deleted image can be deleted
// again. The record goes last; as long as it exists the image is
// retryably deletable.
func (s *DeletionService) Delete(ctx context.Context, userID, imageID string) (DeleteResult, error) {
	img, err := s.repo.Get(ctx, userID, imageID)
	if err != nil {
		return DeleteResult{}, err
	}

	deleted := map[string]bool{
		"original":  true,
		"thumbnail": true,
		"medium":    true,
		"large":     true,
		"metadata":  false,
	}

	originalKey := storage.UploadKeyAt(userID, imageID, img.ImageName, img.UploadTimestamp)
	if err := s.store.RemoveUpload(ctx, originalKey); err != nil {
		s.log.Warn().Err(err).Str("key", originalKey).Msg("remove original failed")
		deleted["original"] = false
	}

	renditions := map[string]string{
		"thumbnail": storage.ThumbnailKey(userID, imageID),
		"medium":    storage.MediumKey(userID, imageID),
		"large":     storage.LargeKey(userID, imageID),
	}
	for name, key := range renditions {
		if err := s.store.RemoveProcessed(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("remove rendition failed")
			deleted[name] = false
		}
	}

	if err := s.repo.Delete(ctx, userID, imageID); err != nil {
		return DeleteResult{}, fmt.Errorf("delete image record: %w", err)
	}
	deleted["metadata"] = true

	s.log.Info().
		Str("user_id", userID).
		Str("image_id", imageID).
		Msg("image deleted")

	return DeleteResult{ImageID: imageID, DeletedFiles: deleted}, nil
}
