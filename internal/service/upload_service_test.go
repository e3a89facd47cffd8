package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/config"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/storage"
)

type fakePresigner struct {
	lastKey         string
	lastContentType string
	err             error
}

func (f *fakePresigner) PresignUpload(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastKey = key
	f.lastContentType = contentType
	return "https://storage.local/" + key + "?signed", nil
}

func (f *fakePresigner) UploadsBucket() string { return "photogallery-uploads" }

func newUploadService(store *fakePresigner) *UploadService {
	return NewUploadService(store, config.UploadConfig{
		MaxFileSize: 10 * 1024 * 1024,
		URLExpiry:   5 * time.Minute,
	}, zerolog.Nop())
}

func TestIssueUploadURL(t *testing.T) {
	store := &fakePresigner{}
	svc := newUploadService(store)

	issue, err := svc.IssueUploadURL(context.Background(), "u1", UploadRequest{
		Filename:    "holiday.jpg",
		ContentType: "image/jpeg",
		FileSize:    1024,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, issue.ImageID)
	assert.Equal(t, "photogallery-uploads", issue.Bucket)
	assert.Equal(t, 300, issue.ExpiresIn)
	assert.Contains(t, issue.UploadURL, issue.Key)
	assert.Equal(t, "image/jpeg", store.lastContentType)

	parsed, err := storage.ParseUploadKey(issue.Key)
	require.NoError(t, err)
	assert.Equal(t, "u1", parsed.UserID)
	assert.Equal(t, issue.ImageID, parsed.ImageID)
	assert.Equal(t, "holiday.jpg", parsed.Filename)
}

func TestIssueUploadURLDefaultsContentType(t *testing.T) {
	store := &fakePresigner{}
	svc := newUploadService(store)

	_, err := svc.IssueUploadURL(context.Background(), "u1", UploadRequest{Filename: "pic.png"})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", store.lastContentType)
}

func TestIssueUploadURLRequiresFilename(t *testing.T) {
	svc := newUploadService(&fakePresigner{})

	_, err := svc.IssueUploadURL(context.Background(), "u1", UploadRequest{Filename: "   "})
	assert.ErrorIs(t, err, ErrFilenameRequired)
}

func TestIssueUploadURLRejectsUnknownExtension(t *testing.T) {
	svc := newUploadService(&fakePresigner{})

	_, err := svc.IssueUploadURL(context.Background(), "u1", UploadRequest{Filename: "report.pdf"})
	require.ErrorIs(t, err, ErrExtensionNotAllowed)

	// The rejection names every accepted extension.
	for _, ext := range []string{".gif", ".jpeg", ".jpg", ".png", ".webp"} {
		assert.Contains(t, err.Error(), ext)
	}
}

func TestIssueUploadURLRejectsOversizedFile(t *testing.T) {
	svc := newUploadService(&fakePresigner{})

	_, err := svc.IssueUploadURL(context.Background(), "u1", UploadRequest{
		Filename: "huge.jpg",
		FileSize: 11 * 1024 * 1024,
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestIssueUploadURLUppercaseExtension(t *testing.T) {
	svc := newUploadService(&fakePresigner{})

	_, err := svc.IssueUploadURL(context.Background(), "u1", UploadRequest{Filename: "PHOTO.JPG"})
	assert.NoError(t, err)
}

func TestIssueUploadURLUniqueIDs(t *testing.T) {
	svc := newUploadService(&fakePresigner{})
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		issue, err := svc.IssueUploadURL(context.Background(), "u1", UploadRequest{Filename: "a.jpg"})
		require.NoError(t, err)
		_, dup := seen[issue.ImageID]
		require.False(t, dup, "duplicate image id %s", issue.ImageID)
		seen[issue.ImageID] = struct{}{}
		require.False(t, strings.ContainsAny(issue.ImageID, "/ "))
	}
}
