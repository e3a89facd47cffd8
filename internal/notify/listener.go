package notify

import (
	"context"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/rs/zerolog"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/queue"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/storage"
)

const reconnectDelay = 3 * time.Second

// Listener subscribes to object-created events on the uploads bucket
// and turns each finished upload into a durable ingest task. The
// notification channel itself is best effort; the queue is what
// guarantees processing.
type Listener struct {
	client    *minio.Client
	bucket    string
	publisher *queue.Publisher
	logger    zerolog.Logger
}

func NewListener(client *minio.Client, bucket string, publisher *queue.Publisher, logger zerolog.Logger) *Listener {
	return &Listener{
		client:    client,
		bucket:    bucket,
		publisher: publisher,
		logger:    logger.With().Str("component", "notify").Logger(),
	}
}

// Start blocks until the context is cancelled, reconnecting whenever
// the notification stream drops.
func (l *Listener) Start(ctx context.Context) error {
	for {
		if err := l.listen(ctx); err != nil {
			l.logger.Error().Err(err).Msg("notification stream dropped")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	l.logger.Info().
		Str("bucket", l.bucket).
		Str("prefix", storage.UploadPrefix+"/").
		Msg("listening for uploads")

	events := l.client.ListenBucketNotification(ctx, l.bucket,
		storage.UploadPrefix+"/", "", []string{"s3:ObjectCreated:*"})

	for info := range events {
		if info.Err != nil {
			return info.Err
		}
		for _, record := range info.Records {
			l.publish(ctx, record)
		}
	}
	return nil
}

func (l *Listener) publish(ctx context.Context, record notification.Event) {
	// Object keys arrive URL-encoded in the event record.
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		l.logger.Warn().Err(err).Str("key", record.S3.Object.Key).Msg("unescape object key failed")
		key = record.S3.Object.Key
	}

	if err := l.publisher.EnqueueIngest(ctx, record.S3.Bucket.Name, key); err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("enqueue ingest failed")
		return
	}
	l.logger.Debug().Str("key", key).Msg("ingest task queued")
}
