package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/templui/spacetraveling/internal/config"
)

// Storage is where a static export is published.
type Storage interface {
	// Save writes body to path, replacing any existing file.
	Save(ctx context.Context, path, contentType string, body io.Reader) error

	// Delete removes path. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// List returns the slash separated paths stored below prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// URL returns the public URL for path.
	URL(path string) string
}

// New returns the storage selected by PUBLISH_TARGET.
func New(ctx context.Context, c *config.Config) (Storage, error) {
	switch c.PublishTarget {
	case "local", "":
		slog.Info("publishing to local directory", "dir", c.OutputDir)
		return NewLocalStorage(c.OutputDir, c.AppURL)
	case "s3":
		slog.Info("publishing to S3",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(ctx, S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown publish target %q", c.PublishTarget)
	}
}
