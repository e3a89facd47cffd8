package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/config"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/storage"
)

// allowedExtensions is the closed set of upload formats. Anything
// outside it is rejected before a URL is ever issued.
var allowedExtensions = []string{".gif", ".jpeg", ".jpg", ".png", ".webp"}

const defaultContentType = "image/jpeg"

type uploadPresigner interface {
	PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	UploadsBucket() string
}

type UploadService struct {
	store       uploadPresigner
	maxFileSize int64
	urlExpiry   time.Duration
	log         zerolog.Logger
}

func NewUploadService(store uploadPresigner, cfg config.UploadConfig, log zerolog.Logger) *UploadService {
	return &UploadService{
		store:       store,
		maxFileSize: cfg.MaxFileSize,
		urlExpiry:   cfg.URLExpiry,
		log:         log.With().Str("component", "upload_service").Logger(),
	}
}

type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"fileSize"`
}

type UploadIssue struct {
	UploadURL string `json:"uploadUrl"`
	ImageID   string `json:"imageId"`
	Key       string `json:"key"`
	Bucket    string `json:"bucket"`
	ExpiresIn int    `json:"expiresInSeconds"`
}

// IssueUploadURL validates the request and hands back a short-lived,
// single-object presigned PUT. Nothing is recorded here: the record is
// created only when the finished upload comes through the pipeline.
func (s *UploadService) IssueUploadURL(ctx context.Context, userID string, req UploadRequest) (UploadIssue, error) {
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		return UploadIssue{}, ErrFilenameRequired
	}

	ext := strings.ToLower(path.Ext(filename))
	if !extensionAllowed(ext) {
		return UploadIssue{}, fmt.Errorf("%w: allowed extensions are %s",
			ErrExtensionNotAllowed, strings.Join(allowedExtensions, ", "))
	}

	if req.FileSize > s.maxFileSize {
		return UploadIssue{}, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxFileSize)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	imageID := uuid.NewString()
	key := storage.BuildUploadKey(userID, imageID, filename, time.Now())

	uploadURL, err := s.store.PresignUpload(ctx, key, contentType, s.urlExpiry)
	if err != nil {
		return UploadIssue{}, fmt.Errorf("presign upload: %w", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Str("image_id", imageID).
		Str("key", key).
		Msg("upload url issued")

	return UploadIssue{
		UploadURL: uploadURL,
		ImageID:   imageID,
		Key:       key,
		Bucket:    s.store.UploadsBucket(),
		ExpiresIn: int(s.urlExpiry / time.Second),
	}, nil
}

func extensionAllowed(ext string) bool {
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
