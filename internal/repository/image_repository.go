package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
)

var ErrImageNotFound = errors.New("image not found")

type ImageRepository struct {
	pool *pgxpool.Pool
}

func NewImageRepository(pool *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

const imageColumns = `user_id, image_id, image_name, upload_timestamp, width, height,
	file_size, processing_status, analysis_status, tags, ai_analysis, created_at, updated_at`

func (r *ImageRepository) Create(ctx context.Context, img models.Image) error {
	const query = `
		INSERT INTO images (
			user_id, image_id, image_name, upload_timestamp, width, height,
			file_size, processing_status, analysis_status, tags, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`

	tags := img.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		img.UserID,
		img.ImageID,
		img.ImageName,
		img.UploadTimestamp,
		img.Width,
		img.Height,
		img.FileSize,
		img.ProcessingStatus,
		img.AnalysisStatus,
		tags,
	)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

func (r *ImageRepository) Get(ctx context.Context, userID, imageID string) (models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE user_id = $1 AND image_id = $2`

	img, err := scanImage(r.pool.QueryRow(ctx, query, userID, imageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Image{}, ErrImageNotFound
		}
		return models.Image{}, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

// ApplyAnalysis merges analysis results into an existing record. Only
// the analyzer-owned fields are touched, so a concurrent writer of the
// rendition fields is never clobbered.
func (r *ImageRepository) ApplyAnalysis(ctx context.Context, userID, imageID string, tags []string, analysis models.AIAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}

	const query = `
		UPDATE images
		SET tags = $3,
		    ai_analysis = $4,
		    analysis_status = $5,
		    updated_at = NOW()
		WHERE user_id = $1 AND image_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, userID, imageID, tags, payload, models.AnalysisCompleted)
	if err != nil {
		return fmt.Errorf("apply analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *ImageRepository) Delete(ctx context.Context, userID, imageID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM images WHERE user_id = $1 AND image_id = $2`, userID, imageID)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

// Exists reports whether a record is present without loading it.
func (r *ImageRepository) Exists(ctx context.Context, userID, imageID string) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM images WHERE user_id = $1 AND image_id = $2`, userID, imageID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check image: %w", err)
	}
	return true, nil
}

// ListQuery selects one page from a single owner's time-ordered index.
// The date bounds are inclusive and applied inside the index
// condition; every other filter happens above this layer.
type ListQuery struct {
	UserID   string
	Limit    int
	Asc      bool
	DateFrom *int64
	DateTo   *int64
	After    *Cursor
}

type ListResult struct {
	Images  []models.Image
	HasMore bool
	Next    *Cursor
}

func (r *ImageRepository) ListPage(ctx context.Context, q ListQuery) (ListResult, error) {
	var (
		conds = []string{"user_id = $1"}
		args  = []any{q.UserID}
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.DateFrom != nil {
		conds = append(conds, "upload_timestamp >= "+arg(*q.DateFrom))
	}
	if q.DateTo != nil {
		conds = append(conds, "upload_timestamp <= "+arg(*q.DateTo))
	}

	if q.After != nil {
		op := "<"
		if q.Asc {
			op = ">"
		}
		conds = append(conds, fmt.Sprintf("(upload_timestamp, image_id) %s (%s, %s)",
			op, arg(q.After.Timestamp), arg(q.After.ImageID)))
	}

	order := "DESC"
	if q.Asc {
		order = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT %s FROM images WHERE %s ORDER BY upload_timestamp %s, image_id %s LIMIT %s`,
		imageColumns, strings.Join(conds, " AND "), order, order, arg(q.Limit+1),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("iterate images: %w", err)
	}

	result := ListResult{Images: images}
	if len(images) > q.Limit {
		result.Images = images[:q.Limit]
		result.HasMore = true
	}
	if n := len(result.Images); n > 0 {
		last := result.Images[n-1]
		result.Next = &Cursor{Timestamp: last.UploadTimestamp, ImageID: last.ImageID}
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(row rowScanner) (models.Image, error) {
	var (
		img      models.Image
		tags     []string
		analysis []byte
	)

	err := row.Scan(
		&img.UserID,
		&img.ImageID,
		&img.ImageName,
		&img.UploadTimestamp,
		&img.Width,
		&img.Height,
		&img.FileSize,
		&img.ProcessingStatus,
		&img.AnalysisStatus,
		&tags,
		&analysis,
		&img.CreatedAt,
		&img.UpdatedAt,
	)
	if err != nil {
		return models.Image{}, err
	}

	img.Tags = tags
	if img.Tags == nil {
		img.Tags = []string{}
	}
	if len(analysis) > 0 {
		var ai models.AIAnalysis
		if err := json.Unmarshal(analysis, &ai); err != nil {
			return models.Image{}, fmt.Errorf("unmarshal analysis: %w", err)
		}
		img.AIAnalysis = &ai
	}
	return img, nil
}
