package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/ksuid"
)

type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

func (p *Publisher) EnqueueIngest(ctx context.Context, bucket, key string) error {
	return p.enqueue(ctx, TaskPayload{
		Type:   TaskIngest,
		Bucket: bucket,
		Key:    key,
	})
}

func (p *Publisher) EnqueueAnalyze(ctx context.Context, userID, imageID, bucket, key string) error {
	return p.enqueue(ctx, TaskPayload{
		Type:    TaskAnalyze,
		UserID:  userID,
		ImageID: imageID,
		Bucket:  bucket,
		Key:     key,
	})
}

func (p *Publisher) EnqueueSweep(ctx context.Context) error {
	return p.enqueue(ctx, TaskPayload{Type: TaskSweep})
}

func (p *Publisher) enqueue(ctx context.Context, payload TaskPayload) error {
	payload.TaskID = ksuid.New().String()

	values := map[string]any{
		"taskId": payload.TaskID,
		"type":   payload.Type,
	}
	if payload.Key != "" {
		values["key"] = payload.Key
	}
	if payload.Bucket != "" {
		values["bucket"] = payload.Bucket
	}
	if payload.UserID != "" {
		values["userId"] = payload.UserID
	}
	if payload.ImageID != "" {
		values["imageId"] = payload.ImageID
	}

	if _, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Result(); err != nil {
		return fmt.Errorf("enqueue %s: %w", payload.Type, err)
	}
	return nil
}
