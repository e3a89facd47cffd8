package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	UploadPrefix    = "uploads"
	ProcessedPrefix = "processed"

	// keyTimeFormat is the timestamp embedded in upload keys. Changing
	// it (or any of the key layouts below) breaks every object already
	// stored, so treat these as a persisted contract.
	keyTimeFormat = "20060102150405"
)

var (
	// ErrNotUpload marks keys outside the uploads prefix. They belong
	// to some other producer and are silently skipped.
	ErrNotUpload = errors.New("key is not under the uploads prefix")

	ErrMalformedKey = errors.New("malformed upload key")
)

// UploadKey is the parsed form of an uploads-bucket object key:
// uploads/{userId}/{imageId}-{timestamp}-{filename}.
type UploadKey struct {
	UserID    string
	ImageID   string
	Timestamp string
	Filename  string
}

// UploadedAt converts the key timestamp into epoch seconds.
func (k UploadKey) UploadedAt() (int64, error) {
	t, err := time.Parse(keyTimeFormat, k.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("parse key timestamp %q: %w", k.Timestamp, err)
	}
	return t.Unix(), nil
}

// BuildUploadKey assembles the canonical key for a fresh upload.
func BuildUploadKey(userID, imageID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s-%s-%s", UploadPrefix, userID, imageID, now.UTC().Format(keyTimeFormat), filename)
}

// UploadKeyAt rebuilds the upload key from stored metadata. It is the
// inverse of BuildUploadKey for a record whose UploadTimestamp came
// from UploadedAt.
func UploadKeyAt(userID, imageID, filename string, uploadedAt int64) string {
	return BuildUploadKey(userID, imageID, filename, time.Unix(uploadedAt, 0).UTC())
}

// ParseUploadKey recovers the upload identity from an object key. The
// filename segment may itself contain dashes, so the name is split on
// "-" at most twice.
func ParseUploadKey(key string) (UploadKey, error) {
	if !strings.HasPrefix(key, UploadPrefix+"/") {
		return UploadKey{}, ErrNotUpload
	}

	parts := strings.Split(key, "/")
	if len(parts) < 3 {
		return UploadKey{}, fmt.Errorf("%w: %q has %d segments", ErrMalformedKey, key, len(parts))
	}

	name := strings.SplitN(parts[2], "-", 3)
	if len(name) < 3 {
		return UploadKey{}, fmt.Errorf("%w: %q has no imageId-timestamp-filename form", ErrMalformedKey, key)
	}

	return UploadKey{
		UserID:    parts[1],
		ImageID:   name[0],
		Timestamp: name[1],
		Filename:  name[2],
	}, nil
}

// Rendition keys. The imageId is baked into each one so a rendition is
// addressable without a metadata lookup.

func ThumbnailKey(userID, imageID string) string {
	return fmt.Sprintf("%s/%s/thumb-%s.jpg", ProcessedPrefix, userID, imageID)
}

func MediumKey(userID, imageID string) string {
	return fmt.Sprintf("%s/%s/med-%s.jpg", ProcessedPrefix, userID, imageID)
}

func LargeKey(userID, imageID string) string {
	return fmt.Sprintf("%s/%s/%s.jpg", ProcessedPrefix, userID, imageID)
}
