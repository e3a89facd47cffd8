package vision

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/config"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
)

const topEmotions = 3

// RekognitionClient implements Client against Amazon Rekognition.
type RekognitionClient struct {
	api *rekognition.Client
}

func NewRekognitionClient(ctx context.Context, cfg config.VisionConfig) (*RekognitionClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &RekognitionClient{
		api: rekognition.NewFromConfig(awsCfg),
	}, nil
}

func (c *RekognitionClient) DetectLabels(ctx context.Context, image []byte, maxLabels int, minConfidence float64) ([]models.Label, error) {
	out, err := c.api.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(int32(maxLabels)),
		MinConfidence: aws.Float32(float32(minConfidence)),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels: %w", err)
	}

	labels := make([]models.Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, models.Label{
			Name:       aws.ToString(l.Name),
			Confidence: round2(float64(aws.ToFloat32(l.Confidence))),
		})
	}
	return labels, nil
}

func (c *RekognitionClient) DetectText(ctx context.Context, image []byte, minConfidence float64) ([]models.TextDetection, error) {
	out, err := c.api.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return nil, fmt.Errorf("detect text: %w", err)
	}

	// Only line-level detections survive; word-level results repeat the
	// same content.
	var lines []models.TextDetection
	for _, t := range out.TextDetections {
		if t.Type != types.TextTypesLine {
			continue
		}
		conf := float64(aws.ToFloat32(t.Confidence))
		if conf < minConfidence {
			continue
		}
		lines = append(lines, models.TextDetection{
			Text:       aws.ToString(t.DetectedText),
			Confidence: round2(conf),
		})
	}
	return lines, nil
}

func (c *RekognitionClient) DetectFaces(ctx context.Context, image []byte) ([]models.Face, error) {
	out, err := c.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]models.Face, 0, len(out.FaceDetails))
	for _, f := range out.FaceDetails {
		face := models.Face{
			Confidence: round2(float64(aws.ToFloat32(f.Confidence))),
		}
		if f.AgeRange != nil {
			face.AgeRange = models.AgeRange{
				Low:  int(aws.ToInt32(f.AgeRange.Low)),
				High: int(aws.ToInt32(f.AgeRange.High)),
			}
		}
		if f.Gender != nil {
			face.Gender = string(f.Gender.Value)
		}
		face.Emotions = topEmotionList(f.Emotions)
		if f.Smile != nil {
			face.Smile = f.Smile.Value
		}
		if f.Eyeglasses != nil {
			face.Eyeglasses = f.Eyeglasses.Value
		}
		if f.Sunglasses != nil {
			face.Sunglasses = f.Sunglasses.Value
		}
		if f.Beard != nil {
			face.Beard = f.Beard.Value
		}
		faces = append(faces, face)
	}
	return faces, nil
}

func (c *RekognitionClient) DetectModeration(ctx context.Context, image []byte, minConfidence float64) ([]models.ModerationFlag, error) {
	out, err := c.api.DetectModerationLabels(ctx, &rekognition.DetectModerationLabelsInput{
		Image:         &types.Image{Bytes: image},
		MinConfidence: aws.Float32(float32(minConfidence)),
	})
	if err != nil {
		return nil, fmt.Errorf("detect moderation labels: %w", err)
	}

	flags := make([]models.ModerationFlag, 0, len(out.ModerationLabels))
	for _, m := range out.ModerationLabels {
		flags = append(flags, models.ModerationFlag{
			Name:       aws.ToString(m.Name),
			ParentName: aws.ToString(m.ParentName),
			Confidence: round2(float64(aws.ToFloat32(m.Confidence))),
		})
	}
	return flags, nil
}

func topEmotionList(emotions []types.Emotion) []models.Emotion {
	sorted := make([]types.Emotion, len(emotions))
	copy(sorted, emotions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return aws.ToFloat32(sorted[i].Confidence) > aws.ToFloat32(sorted[j].Confidence)
	})

	if len(sorted) > topEmotions {
		sorted = sorted[:topEmotions]
	}

	result := make([]models.Emotion, 0, len(sorted))
	for _, e := range sorted {
		result = append(result, models.Emotion{
			Type:       string(e.Type),
			Confidence: round2(float64(aws.ToFloat32(e.Confidence))),
		})
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
