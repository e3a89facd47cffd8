package vision

import (
	"context"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
)

// Client is the vision-service surface the analyzer depends on. Each
// method runs one detection over raw image bytes.
type Client interface {
	DetectLabels(ctx context.Context, image []byte, maxLabels int, minConfidence float64) ([]models.Label, error)
	DetectText(ctx context.Context, image []byte, minConfidence float64) ([]models.TextDetection, error)
	DetectFaces(ctx context.Context, image []byte) ([]models.Face, error)
	DetectModeration(ctx context.Context, image []byte, minConfidence float64) ([]models.ModerationFlag, error)
}
