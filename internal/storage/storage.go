// Package storage keeps uploaded post images in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vecinu/internal/config"
	"vecinu/internal/middleware"
)

// ObjectStore is the object storage port used by the image service.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ThumbnailURL appends the transform parameters understood by the image CDN.
func ThumbnailURL(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "width=400&height=300"
}

// New builds the configured store. Without S3 settings, development and test
// environments fall back to an in-memory store; production refuses to start.
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	if cfg.S3Endpoint == "" {
		if cfg.IsProduction() {
			return nil, errors.New("S3_ENDPOINT is required in production")
		}
		middleware.Logger.WarnContext(ctx, "S3_ENDPOINT not set, storing images in memory")
		return NewMemoryStore(strings.TrimRight(cfg.AppURL, "/") + "/media"), nil
	}

	store, err := NewMinioStore(ctx, MinioConfig{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		UseSSL:    cfg.S3UseSSL,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	return store, nil
}
