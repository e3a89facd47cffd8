package vision

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
)

// storedTextLimit caps how many text detections are kept on the record
// so a text-heavy image cannot bloat it.
const storedTextLimit = 5

type Analyzer struct {
	client        Client
	maxLabels     int
	minConfidence float64
	log           zerolog.Logger
}

func NewAnalyzer(client Client, maxLabels int, minConfidence float64, log zerolog.Logger) *Analyzer {
	if maxLabels <= 0 {
		maxLabels = 10
	}
	if minConfidence <= 0 {
		minConfidence = 80
	}
	return &Analyzer{
		client:        client,
		maxLabels:     maxLabels,
		minConfidence: minConfidence,
		log:           log,
	}
}

// Analyze runs all four detections against one image. The detections
// are independent: a failure in any of them is logged and the rest
// still contribute, so the result is whatever subset succeeded.
func (a *Analyzer) Analyze(ctx context.Context, image []byte) models.AIAnalysis {
	analysis := models.AIAnalysis{
		Labels:          []models.Label{},
		TextDetections:  []models.TextDetection{},
		Faces:           []models.Face{},
		ModerationFlags: []models.ModerationFlag{},
		IsSafe:          true,
	}

	labels, err := a.client.DetectLabels(ctx, image, a.maxLabels, a.minConfidence)
	if err != nil {
		a.log.Error().Err(err).Msg("label detection failed")
	} else {
		analysis.Labels = labels
	}

	text, err := a.client.DetectText(ctx, image, a.minConfidence)
	if err != nil {
		a.log.Error().Err(err).Msg("text detection failed")
	} else {
		if len(text) > storedTextLimit {
			text = text[:storedTextLimit]
		}
		analysis.TextDetections = text
		analysis.HasText = len(text) > 0
	}

	faces, err := a.client.DetectFaces(ctx, image)
	if err != nil {
		a.log.Error().Err(err).Msg("face detection failed")
	} else {
		analysis.Faces = faces
		analysis.FaceCount = len(faces)
	}

	flags, err := a.client.DetectModeration(ctx, image, a.minConfidence)
	if err != nil {
		a.log.Error().Err(err).Msg("moderation detection failed")
	} else {
		analysis.ModerationFlags = flags
		analysis.IsSafe = len(flags) == 0
	}

	return analysis
}

// Tags flattens the label names into the lowercase tag list stored on
// the record.
func Tags(analysis models.AIAnalysis) []string {
	tags := make([]string, 0, len(analysis.Labels))
	for _, label := range analysis.Labels {
		tags = append(tags, strings.ToLower(label.Name))
	}
	return tags
}
