// Package storage saves uploaded post images on local disk or in an S3 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/yatube/yatube/config"
)

// ErrInvalidName is returned for object names that escape the storage root.
var ErrInvalidName = errors.New("invalid object name")

// Storage is a flat object store addressed by slash separated names.
type Storage interface {
	Save(ctx context.Context, name string, body io.Reader, contentType string) error
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

// New builds the backend selected by cfg.StorageBackend.
func New(cfg config.AppConfig) (Storage, error) {
	switch cfg.StorageBackend {
	case "disk", "":
		return NewDiskStorage(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		return NewS3Storage(S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			BaseURL:   cfg.MediaURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

func cleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") {
		return "", ErrInvalidName
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidName
	}
	return cleaned, nil
}

func joinURL(base, name string) string {
	if base == "" {
		base = "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + name
}
