package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/config"
)

func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpen)
	poolConfig.MinConns = int32(cfg.MaxIdle)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.HealthCheckPeriod = 30 * time.Second

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS images (
	user_id           text        NOT NULL,
	image_id          text        NOT NULL,
	image_name        text        NOT NULL,
	upload_timestamp  bigint      NOT NULL,
	width             integer     NOT NULL DEFAULT 0,
	height            integer     NOT NULL DEFAULT 0,
	file_size         bigint      NOT NULL DEFAULT 0,
	processing_status text        NOT NULL DEFAULT 'pending',
	analysis_status   text        NOT NULL DEFAULT 'pending',
	tags              text[]      NOT NULL DEFAULT '{}',
	ai_analysis       jsonb,
	created_at        timestamptz NOT NULL DEFAULT now(),
	updated_at        timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, image_id)
);

CREATE INDEX IF NOT EXISTS images_upload_time_idx
	ON images (user_id, upload_timestamp, image_id);
`

// EnsureSchema creates the images table and its time-ordered index if
// they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
