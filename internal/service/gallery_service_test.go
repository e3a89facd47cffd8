package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/config"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/repository"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/storage"
)

type fakeLister struct {
	lastQuery repository.ListQuery
	result    repository.ListResult
	err       error
}

func (f *fakeLister) ListPage(_ context.Context, q repository.ListQuery) (repository.ListResult, error) {
	f.lastQuery = q
	return f.result, f.err
}

func newGalleryService(lister galleryLister) *GalleryService {
	urls := storage.NewURLBuilder(config.StorageConfig{
		Endpoint:        "storage.local:9000",
		BucketUploads:   "photogallery-uploads",
		BucketProcessed: "photogallery-processed",
	})
	return NewGalleryService(lister, urls, zerolog.Nop())
}

func galleryImage(id string, ts int64) models.Image {
	return models.Image{
		ImageID:         id,
		UserID:          "u1",
		ImageName:       id + ".jpg",
		UploadTimestamp: ts,
	}
}

func TestListDefaultsAndToken(t *testing.T) {
	lister := &fakeLister{result: repository.ListResult{
		Images:  []models.Image{galleryImage("a", 300), galleryImage("b", 200)},
		HasMore: true,
		Next:    &repository.Cursor{Timestamp: 200, ImageID: "b"},
	}}
	svc := newGalleryService(lister)

	page, err := svc.List(context.Background(), "u1", ListParams{})
	require.NoError(t, err)

	assert.Equal(t, 20, lister.lastQuery.Limit)
	assert.False(t, lister.lastQuery.Asc)
	assert.Len(t, page.Images, 2)
	assert.True(t, page.HasMore)

	cursor, err := repository.DecodeCursor(page.NextToken)
	require.NoError(t, err)
	assert.Equal(t, "b", cursor.ImageID)
}

func TestListClampsLimit(t *testing.T) {
	lister := &fakeLister{}
	svc := newGalleryService(lister)

	_, err := svc.List(context.Background(), "u1", ListParams{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, lister.lastQuery.Limit)
}

func TestListRejectsBadToken(t *testing.T) {
	svc := newGalleryService(&fakeLister{})

	_, err := svc.List(context.Background(), "u1", ListParams{Token: "garbage!!"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestListAscendingPassesThrough(t *testing.T) {
	lister := &fakeLister{}
	svc := newGalleryService(lister)

	_, err := svc.List(context.Background(), "u1", ListParams{SortOrder: "asc"})
	require.NoError(t, err)
	assert.True(t, lister.lastQuery.Asc)
}

func TestViewCarriesStatuses(t *testing.T) {
	img := galleryImage("abc", 100)
	img.ProcessingStatus = models.ProcessingCompleted
	img.AnalysisStatus = models.AnalysisPending

	lister := &fakeLister{result: repository.ListResult{Images: []models.Image{img}}}
	svc := newGalleryService(lister)

	page, err := svc.List(context.Background(), "u1", ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Images, 1)
	assert.Equal(t, "completed", page.Images[0].ProcessingStatus)
	assert.Equal(t, "pending", page.Images[0].AnalysisStatus)
}

func TestListBuildsRenditionURLs(t *testing.T) {
	lister := &fakeLister{result: repository.ListResult{
		Images: []models.Image{galleryImage("abc", 1704110400)},
	}}
	svc := newGalleryService(lister)

	page, err := svc.List(context.Background(), "u1", ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Images, 1)

	urls := page.Images[0].URLs
	assert.Contains(t, urls.Thumbnail, "thumb-abc.jpg")
	assert.Contains(t, urls.Medium, "med-abc.jpg")
	assert.Contains(t, urls.Large, "abc.jpg")
	assert.NotEmpty(t, urls.Original)
}

func TestSearchOverfetches(t *testing.T) {
	lister := &fakeLister{}
	svc := newGalleryService(lister)

	_, err := svc.Search(context.Background(), "u1", SearchParams{
		ListParams: ListParams{Limit: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 30, lister.lastQuery.Limit)
}

func TestSearchFiltersTagsAnyMatch(t *testing.T) {
	dog := galleryImage("dog", 300)
	dog.Tags = []string{"dog", "animal"}
	cat := galleryImage("cat", 200)
	cat.Tags = []string{"cat"}

	lister := &fakeLister{result: repository.ListResult{Images: []models.Image{dog, cat}}}
	svc := newGalleryService(lister)

	page, err := svc.Search(context.Background(), "u1", SearchParams{
		Tags: []string{"Animal", "bird"},
	})
	require.NoError(t, err)
	require.Len(t, page.Images, 1)
	assert.Equal(t, "dog", page.Images[0].ImageID)
}

func TestSearchFiltersFilenameSubstring(t *testing.T) {
	a := galleryImage("a", 300)
	a.ImageName = "Beach-Holiday.JPG"
	b := galleryImage("b", 200)
	b.ImageName = "office.png"

	lister := &fakeLister{result: repository.ListResult{Images: []models.Image{a, b}}}
	svc := newGalleryService(lister)

	page, err := svc.Search(context.Background(), "u1", SearchParams{Filename: "holiday"})
	require.NoError(t, err)
	require.Len(t, page.Images, 1)
	assert.Equal(t, "a", page.Images[0].ImageID)
}

func TestSearchHasFacesExcludesZeroFaceCount(t *testing.T) {
	withFaces := galleryImage("faces", 300)
	withFaces.AIAnalysis = &models.AIAnalysis{FaceCount: 2}
	zeroFaces := galleryImage("zero", 200)
	zeroFaces.AIAnalysis = &models.AIAnalysis{FaceCount: 0}
	unanalyzed := galleryImage("raw", 100)

	lister := &fakeLister{result: repository.ListResult{
		Images: []models.Image{withFaces, zeroFaces, unanalyzed},
	}}
	svc := newGalleryService(lister)

	wantFaces := true
	page, err := svc.Search(context.Background(), "u1", SearchParams{HasFaces: &wantFaces})
	require.NoError(t, err)
	require.Len(t, page.Images, 1)
	assert.Equal(t, "faces", page.Images[0].ImageID)

	// Records without any analysis yet count as face-free.
	wantFaces = false
	page, err = svc.Search(context.Background(), "u1", SearchParams{HasFaces: &wantFaces})
	require.NoError(t, err)
	require.Len(t, page.Images, 2)
	assert.ElementsMatch(t, []string{"zero", "raw"},
		[]string{page.Images[0].ImageID, page.Images[1].ImageID})
}

func TestSearchTruncationTokenResumesAfterLastReturned(t *testing.T) {
	images := make([]models.Image, 4)
	for i := range images {
		images[i] = galleryImage(string(rune('a'+i)), int64(400-i*100))
		images[i].Tags = []string{"match"}
	}
	lister := &fakeLister{result: repository.ListResult{
		Images:  images,
		HasMore: false,
	}}
	svc := newGalleryService(lister)

	page, err := svc.Search(context.Background(), "u1", SearchParams{
		ListParams: ListParams{Limit: 2},
		Tags:       []string{"match"},
	})
	require.NoError(t, err)
	require.Len(t, page.Images, 2)
	assert.True(t, page.HasMore)

	cursor, err := repository.DecodeCursor(page.NextToken)
	require.NoError(t, err)
	assert.Equal(t, page.Images[1].ImageID, cursor.ImageID)
}

// keysetLister serves pages from a seeded slice the way the real
// repository does: descending by (timestamp, id), resuming strictly
// after the cursor position.
type keysetLister struct {
	images []models.Image
}

func (k *keysetLister) ListPage(_ context.Context, q repository.ListQuery) (repository.ListResult, error) {
	var rows []models.Image
	for _, img := range k.images {
		if q.After != nil {
			after := *q.After
			if img.UploadTimestamp > after.Timestamp ||
				(img.UploadTimestamp == after.Timestamp && img.ImageID >= after.ImageID) {
				continue
			}
		}
		rows = append(rows, img)
	}

	result := repository.ListResult{}
	if len(rows) > q.Limit {
		rows = rows[:q.Limit]
		result.HasMore = true
	}
	result.Images = rows
	if result.HasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		result.Next = &repository.Cursor{Timestamp: last.UploadTimestamp, ImageID: last.ImageID}
	}
	return result, nil
}

func TestListPaginationResumesWithoutDuplicatesOrSkips(t *testing.T) {
	lister := &keysetLister{}
	for i := 0; i < 45; i++ {
		lister.images = append(lister.images,
			galleryImage(string(rune('a'+i%26))+string(rune('0'+i/26)), int64(1000-i)))
	}
	svc := newGalleryService(lister)

	seen := make(map[string]struct{})
	token := ""
	pages := 0
	for {
		page, err := svc.List(context.Background(), "u1", ListParams{Limit: 20, Token: token})
		require.NoError(t, err)
		for _, img := range page.Images {
			_, dup := seen[img.ImageID]
			require.False(t, dup, "duplicate %s", img.ImageID)
			seen[img.ImageID] = struct{}{}
		}
		pages++
		if !page.HasMore {
			break
		}
		require.NotEmpty(t, page.NextToken)
		token = page.NextToken
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 45)
}

func TestViewAnalysisSummaryTopLabels(t *testing.T) {
	img := galleryImage("x", 100)
	img.AIAnalysis = &models.AIAnalysis{
		Labels: []models.Label{
			{Name: "Sky", Confidence: 80},
			{Name: "Beach", Confidence: 99},
			{Name: "Sea", Confidence: 95},
			{Name: "Sand", Confidence: 90},
		},
		FaceCount: 1,
		IsSafe:    true,
	}
	lister := &fakeLister{result: repository.ListResult{Images: []models.Image{img}}}
	svc := newGalleryService(lister)

	page, err := svc.List(context.Background(), "u1", ListParams{})
	require.NoError(t, err)
	require.NotNil(t, page.Images[0].Analysis)
	assert.Equal(t, []string{"Beach", "Sea", "Sand"}, page.Images[0].Analysis.TopLabels)
}
