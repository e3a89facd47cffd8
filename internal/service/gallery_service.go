package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/repository"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/storage"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	// Search fetches extra rows per page because filters run after the
	// page is read; a sparse match rate would otherwise starve pages.
	searchOverfetch = 3

	topLabelCount = 3
)

type galleryLister interface {
	ListPage(ctx context.Context, q repository.ListQuery) (repository.ListResult, error)
}

type GalleryService struct {
	repo galleryLister
	urls *storage.URLBuilder
	log  zerolog.Logger
}

func NewGalleryService(repo galleryLister, urls *storage.URLBuilder, log zerolog.Logger) *GalleryService {
	return &GalleryService{
		repo: repo,
		urls: urls,
		log:  log.With().Str("component", "gallery_service").Logger(),
	}
}

type ListParams struct {
	Limit     int
	SortOrder string
	Token     string
}

type SearchParams struct {
	ListParams

	Tags     []string
	Filename string
	DateFrom *int64
	DateTo   *int64
	HasFaces *bool
	HasText  *bool
}

// AnalysisSummary is the trimmed view of a record's stored analysis.
type AnalysisSummary struct {
	FaceCount int      `json:"faceCount"`
	HasText   bool     `json:"hasText"`
	IsSafe    bool     `json:"isSafe"`
	TopLabels []string `json:"topLabels"`
}

type ImageView struct {
	ImageID          string               `json:"imageId"`
	ImageName        string               `json:"imageName"`
	UploadTimestamp  int64                `json:"uploadTimestamp"`
	Width            int                  `json:"width"`
	Height           int                  `json:"height"`
	FileSize         int64                `json:"fileSize"`
	ProcessingStatus string               `json:"processingStatus"`
	AnalysisStatus   string               `json:"analysisStatus"`
	Tags             []string             `json:"tags"`
	URLs             storage.RenditionURLs `json:"urls"`
	Analysis         *AnalysisSummary     `json:"aiAnalysis,omitempty"`
}

type Page struct {
	Images    []ImageView
	HasMore   bool
	NextToken string
}

// List returns one page of the caller's records ordered by upload
// time, newest first unless asked otherwise.
func (s *GalleryService) List(ctx context.Context, userID string, p ListParams) (Page, error) {
	query, err := s.buildQuery(userID, p, nil, nil)
	if err != nil {
		return Page{}, err
	}

	res, err := s.repo.ListPage(ctx, query)
	if err != nil {
		return Page{}, fmt.Errorf("list images: %w", err)
	}

	page := Page{
		Images:  s.views(res.Images),
		HasMore: res.HasMore,
	}
	if res.HasMore && res.Next != nil {
		page.NextToken = repository.EncodeCursor(*res.Next)
	}
	return page, nil
}

// Search pages through the caller's records like List but applies the
// requested filters to each page before returning it. The token of a
// truncated page points at the last record handed back, so resuming
// never skips a match.
func (s *GalleryService) Search(ctx context.Context, userID string, p SearchParams) (Page, error) {
	limit := clampLimit(p.Limit)
	query, err := s.buildQuery(userID, p.ListParams, p.DateFrom, p.DateTo)
	if err != nil {
		return Page{}, err
	}
	query.Limit = limit * searchOverfetch

	res, err := s.repo.ListPage(ctx, query)
	if err != nil {
		return Page{}, fmt.Errorf("search images: %w", err)
	}

	matched := make([]models.Image, 0, limit)
	for _, img := range res.Images {
		if s.matches(img, p) {
			matched = append(matched, img)
		}
	}

	page := Page{}
	if len(matched) > limit {
		last := matched[limit-1]
		matched = matched[:limit]
		page.HasMore = true
		page.NextToken = repository.EncodeCursor(repository.Cursor{
			Timestamp: last.UploadTimestamp,
			ImageID:   last.ImageID,
		})
	} else {
		page.HasMore = res.HasMore
		if res.HasMore && res.Next != nil {
			page.NextToken = repository.EncodeCursor(*res.Next)
		}
	}
	page.Images = s.views(matched)
	return page, nil
}

func (s *GalleryService) buildQuery(userID string, p ListParams, dateFrom, dateTo *int64) (repository.ListQuery, error) {
	query := repository.ListQuery{
		UserID:   userID,
		Limit:    clampLimit(p.Limit),
		Asc:      strings.EqualFold(p.SortOrder, "asc"),
		DateFrom: dateFrom,
		DateTo:   dateTo,
	}

	if p.Token != "" {
		cursor, err := repository.DecodeCursor(p.Token)
		if err != nil {
			return repository.ListQuery{}, ErrInvalidToken
		}
		query.After = &cursor
	}
	return query, nil
}

func (s *GalleryService) matches(img models.Image, p SearchParams) bool {
	if len(p.Tags) > 0 && !hasAnyTag(img.Tags, p.Tags) {
		return false
	}
	if p.Filename != "" &&
		!strings.Contains(strings.ToLower(img.ImageName), strings.ToLower(p.Filename)) {
		return false
	}
	// A record not yet analyzed counts as having no faces and no text,
	// so hasFaces=false / hasText=false include it.
	if p.HasFaces != nil {
		faces := img.AIAnalysis != nil && img.AIAnalysis.FaceCount > 0
		if faces != *p.HasFaces {
			return false
		}
	}
	if p.HasText != nil {
		text := img.AIAnalysis != nil && img.AIAnalysis.HasText
		if text != *p.HasText {
			return false
		}
	}
	return true
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		for _, h := range have {
			if strings.ToLower(h) == w {
				return true
			}
		}
	}
	return false
}

func (s *GalleryService) views(images []models.Image) []ImageView {
	views := make([]ImageView, 0, len(images))
	for _, img := range images {
		views = append(views, s.view(img))
	}
	return views
}

func (s *GalleryService) view(img models.Image) ImageView {
	view := ImageView{
		ImageID:          img.ImageID,
		ImageName:        img.ImageName,
		UploadTimestamp:  img.UploadTimestamp,
		Width:            img.Width,
		Height:           img.Height,
		FileSize:         img.FileSize,
		ProcessingStatus: string(img.ProcessingStatus),
		AnalysisStatus:   string(img.AnalysisStatus),
		Tags:             img.Tags,
		URLs:             s.urls.Renditions(img.UserID, img.ImageID, img.ImageName, img.UploadTimestamp),
	}
	if view.Tags == nil {
		view.Tags = []string{}
	}
	if img.AIAnalysis != nil {
		view.Analysis = &AnalysisSummary{
			FaceCount: img.AIAnalysis.FaceCount,
			HasText:   img.AIAnalysis.HasText,
			IsSafe:    img.AIAnalysis.IsSafe,
			TopLabels: topLabels(img.AIAnalysis.Labels),
		}
	}
	return view
}

func topLabels(labels []models.Label) []string {
	sorted := make([]models.Label, len(labels))
	copy(sorted, labels)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	names := make([]string, 0, topLabelCount)
	for _, label := range sorted {
		if len(names) == topLabelCount {
			break
		}
		names = append(names, label.Name)
	}
	return names
}

func clampLimit(limit int) int {
	if limit < 1 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
