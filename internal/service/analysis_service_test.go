package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/vision"
)

type fakeAnalysisRepo struct {
	lastTags     []string
	lastAnalysis models.AIAnalysis
	applied      bool
	err          error
}

func (f *fakeAnalysisRepo) ApplyAnalysis(_ context.Context, _, _ string, tags []string, analysis models.AIAnalysis) error {
	if f.err != nil {
		return f.err
	}
	f.applied = true
	f.lastTags = tags
	f.lastAnalysis = analysis
	return nil
}

type fakeReader struct {
	lastKey string
	err     error
}

func (f *fakeReader) DownloadProcessed(_ context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastKey = key
	return []byte("image-bytes"), nil
}

type labelOnlyClient struct{}

func (labelOnlyClient) DetectLabels(context.Context, []byte, int, float64) ([]models.Label, error) {
	return []models.Label{{Name: "Mountain", Confidence: 98}}, nil
}
func (labelOnlyClient) DetectText(context.Context, []byte, float64) ([]models.TextDetection, error) {
	return nil, nil
}
func (labelOnlyClient) DetectFaces(context.Context, []byte) ([]models.Face, error) {
	return nil, nil
}
func (labelOnlyClient) DetectModeration(context.Context, []byte, float64) ([]models.ModerationFlag, error) {
	return nil, nil
}

func newAnalysisService(repo *fakeAnalysisRepo, reader *fakeReader) *AnalysisService {
	analyzer := vision.NewAnalyzer(labelOnlyClient{}, 10, 80, zerolog.Nop())
	return NewAnalysisService(repo, reader, analyzer, zerolog.Nop())
}

func TestAnalyzeDefaultsToLargeRendition(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	reader := &fakeReader{}
	svc := newAnalysisService(repo, reader)

	analysis, err := svc.Analyze(context.Background(), "u1", "img1", "")
	require.NoError(t, err)

	assert.Equal(t, "processed/u1/img1.jpg", reader.lastKey)
	assert.True(t, repo.applied)
	assert.Equal(t, []string{"mountain"}, repo.lastTags)
	assert.Len(t, analysis.Labels, 1)
}

func TestAnalyzeExplicitKey(t *testing.T) {
	reader := &fakeReader{}
	svc := newAnalysisService(&fakeAnalysisRepo{}, reader)

	_, err := svc.Analyze(context.Background(), "u1", "img1", "processed/u1/med-img1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "processed/u1/med-img1.jpg", reader.lastKey)
}

func TestAnalyzeRejectsForeignKey(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	reader := &fakeReader{}
	svc := newAnalysisService(repo, reader)

	for _, key := range []string{
		"processed/victim/img9.jpg",
		"processed/victim/thumb-img9.jpg",
		"uploads/u1/img1-20240101120000-a.jpg",
		"processed/u10/img1.jpg",
	} {
		_, err := svc.Analyze(context.Background(), "u1", "img1", key)
		assert.ErrorIs(t, err, ErrKeyNotOwned, key)
	}

	assert.Empty(t, reader.lastKey, "no foreign object may be downloaded")
	assert.False(t, repo.applied)

	// The caller's own renditions stay reachable.
	_, err := svc.Analyze(context.Background(), "u1", "img1", "processed/u1/med-img1.jpg")
	require.NoError(t, err)
}

func TestAnalyzeRequiresIdentity(t *testing.T) {
	svc := newAnalysisService(&fakeAnalysisRepo{}, &fakeReader{})

	_, err := svc.Analyze(context.Background(), "", "img1", "")
	assert.ErrorIs(t, err, ErrImageIDRequired)

	_, err = svc.Analyze(context.Background(), "u1", "", "")
	assert.ErrorIs(t, err, ErrImageIDRequired)
}

func TestAnalyzeDownloadFailureIsUpstream(t *testing.T) {
	reader := &fakeReader{err: errors.New("connection refused")}
	svc := newAnalysisService(&fakeAnalysisRepo{}, reader)

	_, err := svc.Analyze(context.Background(), "u1", "img1", "")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestAnalyzeApplyFailurePropagates(t *testing.T) {
	repo := &fakeAnalysisRepo{err: errors.New("connection reset")}
	svc := newAnalysisService(repo, &fakeReader{})

	_, err := svc.Analyze(context.Background(), "u1", "img1", "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUpstream)
}
