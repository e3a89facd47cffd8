package storage

import (
	"fmt"
	"strings"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/config"
)

// RenditionURLs is the public URL set for one image. URLs are derived
// on read rather than stored, so swapping the CDN domain never needs a
// data migration.
type RenditionURLs struct {
	Thumbnail string `json:"thumbnail"`
	Medium    string `json:"medium"`
	Large     string `json:"large"`
	Original  string `json:"original"`
}

type URLBuilder struct {
	processedBase string
	uploadsBase   string
}

func NewURLBuilder(cfg config.StorageConfig) *URLBuilder {
	if cfg.CDNDomain != "" {
		base := ensureScheme(cfg.CDNDomain)
		return &URLBuilder{
			processedBase: base,
			uploadsBase:   base,
		}
	}

	endpoint := ensureScheme(cfg.Endpoint)
	return &URLBuilder{
		processedBase: fmt.Sprintf("%s/%s", endpoint, cfg.BucketProcessed),
		uploadsBase:   fmt.Sprintf("%s/%s", endpoint, cfg.BucketUploads),
	}
}

func (b *URLBuilder) Renditions(userID, imageID, imageName string, uploadedAt int64) RenditionURLs {
	return RenditionURLs{
		Thumbnail: fmt.Sprintf("%s/%s", b.processedBase, ThumbnailKey(userID, imageID)),
		Medium:    fmt.Sprintf("%s/%s", b.processedBase, MediumKey(userID, imageID)),
		Large:     fmt.Sprintf("%s/%s", b.processedBase, LargeKey(userID, imageID)),
		Original:  fmt.Sprintf("%s/%s", b.uploadsBase, UploadKeyAt(userID, imageID, imageName, uploadedAt)),
	}
}

func ensureScheme(host string) string {
	host = strings.TrimSuffix(host, "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}
