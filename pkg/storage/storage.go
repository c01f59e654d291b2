package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bigbestmart/catalog-backend/pkg/config"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
	"github.com/bigbestmart/catalog-backend/pkg/storage/local"
	"github.com/bigbestmart/catalog-backend/pkg/storage/s3"
)

// Uploader writes objects and resolves their public URLs.
type Uploader interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	PublicURL(bucket, key string) string
}

// Client is an Uploader that can also report its health.
type Client interface {
	Uploader
	Ping(ctx context.Context) error
}

// New builds the configured storage provider.
func New(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.StorageProviderLocal:
		return local.NewClient(ctx, cfg, logg)
	case config.StorageProviderS3, "":
		return s3.NewClient(ctx, cfg, logg)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
