package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/config"
)

// cacheControl for processed renditions: a key's content never changes
// after creation, so clients may cache for a year.
const cacheControl = "max-age=31536000"

type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		cfg:    cfg,
	}, nil
}

func (s *ObjectStore) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.cfg.BucketUploads, s.cfg.BucketProcessed} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("bucket exists %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

func (s *ObjectStore) UploadsBucket() string   { return s.cfg.BucketUploads }
func (s *ObjectStore) ProcessedBucket() string { return s.cfg.BucketProcessed }

// PresignUpload issues a write-capable URL scoped to exactly one key
// and content type in the uploads bucket.
func (s *ObjectStore) PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}

	u, err := s.client.PresignHeader(ctx, http.MethodPut, s.cfg.BucketUploads, key, expiry, url.Values{}, headers)
	if err != nil {
		return "", fmt.Errorf("presign upload %s: %w", key, err)
	}
	return u.String(), nil
}

// DownloadUpload fetches the original bytes from the uploads bucket.
func (s *ObjectStore) DownloadUpload(ctx context.Context, key string) ([]byte, error) {
	return s.download(ctx, s.cfg.BucketUploads, key)
}

// DownloadProcessed fetches a rendition from the processed bucket.
func (s *ObjectStore) DownloadProcessed(ctx context.Context, key string) ([]byte, error) {
	return s.download(ctx, s.cfg.BucketProcessed, key)
}

func (s *ObjectStore) download(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// SaveProcessed writes a rendition with the long-lived cache header.
func (s *ObjectStore) SaveProcessed(ctx context.Context, key string, data []byte, contentType string) error {
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: cacheControl,
	}
	_, err := s.client.PutObject(ctx, s.cfg.BucketProcessed, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *ObjectStore) RemoveUpload(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.cfg.BucketUploads, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove upload %s: %w", key, err)
	}
	return nil
}

func (s *ObjectStore) RemoveProcessed(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.cfg.BucketProcessed, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove processed %s: %w", key, err)
	}
	return nil
}

// ListUploads streams object listings from the uploads bucket.
func (s *ObjectStore) ListUploads(ctx context.Context, prefix string) <-chan minio.ObjectInfo {
	return s.client.ListObjects(ctx, s.cfg.BucketUploads, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
}

func (s *ObjectStore) Client() *minio.Client {
	return s.client
}
