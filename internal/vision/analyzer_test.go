package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
)

type fakeClient struct {
	labels     []models.Label
	labelsErr  error
	text       []models.TextDetection
	textErr    error
	faces      []models.Face
	facesErr   error
	flags      []models.ModerationFlag
	flagsErr   error
	seenLabels int
	seenMinConf float64
}

func (f *fakeClient) DetectLabels(_ context.Context, _ []byte, maxLabels int, minConfidence float64) ([]models.Label, error) {
	f.seenLabels = maxLabels
	f.seenMinConf = minConfidence
	return f.labels, f.labelsErr
}

func (f *fakeClient) DetectText(_ context.Context, _ []byte, _ float64) ([]models.TextDetection, error) {
	return f.text, f.textErr
}

func (f *fakeClient) DetectFaces(_ context.Context, _ []byte) ([]models.Face, error) {
	return f.faces, f.facesErr
}

func (f *fakeClient) DetectModeration(_ context.Context, _ []byte, _ float64) ([]models.ModerationFlag, error) {
	return f.flags, f.flagsErr
}

func TestAnalyzeAggregatesDetections(t *testing.T) {
	client := &fakeClient{
		labels: []models.Label{{Name: "Beach", Confidence: 99.1}, {Name: "Sea", Confidence: 95.5}},
		text:   []models.TextDetection{{Text: "HELLO", Confidence: 92}},
		faces:  []models.Face{{}, {}},
	}
	a := NewAnalyzer(client, 10, 80, zerolog.Nop())

	analysis := a.Analyze(context.Background(), []byte("img"))

	assert.Len(t, analysis.Labels, 2)
	assert.True(t, analysis.HasText)
	assert.Equal(t, 2, analysis.FaceCount)
	assert.True(t, analysis.IsSafe)
	assert.Equal(t, 10, client.seenLabels)
	assert.Equal(t, 80.0, client.seenMinConf)
}

func TestAnalyzePartialFailureKeepsRest(t *testing.T) {
	client := &fakeClient{
		labels:   []models.Label{{Name: "Dog", Confidence: 97}},
		facesErr: errors.New("throttled"),
		textErr:  errors.New("throttled"),
	}
	a := NewAnalyzer(client, 10, 80, zerolog.Nop())

	analysis := a.Analyze(context.Background(), []byte("img"))

	assert.Len(t, analysis.Labels, 1)
	assert.Equal(t, 0, analysis.FaceCount)
	assert.False(t, analysis.HasText)
	assert.Empty(t, analysis.Faces)
	assert.True(t, analysis.IsSafe)
}

func TestAnalyzeCapsStoredText(t *testing.T) {
	text := make([]models.TextDetection, 9)
	for i := range text {
		text[i] = models.TextDetection{Text: "line", Confidence: 90}
	}
	a := NewAnalyzer(&fakeClient{text: text}, 10, 80, zerolog.Nop())

	analysis := a.Analyze(context.Background(), []byte("img"))

	assert.Len(t, analysis.TextDetections, 5)
	assert.True(t, analysis.HasText)
}

func TestAnalyzeModerationFlagsUnsafe(t *testing.T) {
	a := NewAnalyzer(&fakeClient{
		flags: []models.ModerationFlag{{Name: "Violence", Confidence: 88}},
	}, 10, 80, zerolog.Nop())

	analysis := a.Analyze(context.Background(), []byte("img"))

	assert.False(t, analysis.IsSafe)
	assert.Len(t, analysis.ModerationFlags, 1)
}

func TestTagsAreLowercase(t *testing.T) {
	tags := Tags(models.AIAnalysis{Labels: []models.Label{
		{Name: "Golden Retriever"},
		{Name: "Dog"},
	}})
	assert.Equal(t, []string{"golden retriever", "dog"}, tags)
}

func TestAnalyzerDefaults(t *testing.T) {
	client := &fakeClient{}
	a := NewAnalyzer(client, 0, 0, zerolog.Nop())
	a.Analyze(context.Background(), []byte("img"))
	assert.Equal(t, 10, client.seenLabels)
	assert.Equal(t, 80.0, client.seenMinConf)
}
