package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bigbestmart/catalog-backend/pkg/config"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
)

// DefaultPublicPrefix is where the API serves local uploads when no public base URL is set.
const DefaultPublicPrefix = "/uploads"

// Client stores objects on the local filesystem as <dir>/<bucket>/<key>.
type Client struct {
	dir           string
	defaultBucket string
	publicBaseURL string
}

func NewClient(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.LocalDir) == "" {
		return nil, errors.New("local storage dir is required")
	}
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = DefaultPublicPrefix
	}
	client := &Client{
		dir:           filepath.Clean(cfg.LocalDir),
		defaultBucket: cfg.Bucket,
		publicBaseURL: base,
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("local storage check failed: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "dir", client.dir), "local storage initialized")
	}
	return client, nil
}

// Dir returns the root directory objects are written under.
func (c *Client) Dir() string {
	return c.dir
}

func (c *Client) Upload(ctx context.Context, bucket, key string, body io.Reader, _ int64, _ string) error {
	if bucket == "" {
		bucket = c.defaultBucket
	}
	if bucket == "" || key == "" {
		return errors.New("bucket and key are required")
	}
	target, err := c.resolve(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("mkdir for %q: %w", target, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %q: %w", target, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %q: %w", target, err)
	}
	return f.Close()
}

func (c *Client) PublicURL(bucket, key string) string {
	if bucket == "" {
		bucket = c.defaultBucket
	}
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, bucket, key)
}

// Ping ensures the root directory exists and is writable.
func (c *Client) Ping(context.Context) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(c.dir, ".ping-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

func (c *Client) resolve(bucket, key string) (string, error) {
	target := filepath.Join(c.dir, bucket, filepath.FromSlash(key))
	rel, err := filepath.Rel(c.dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object path %q escapes storage dir", key)
	}
	return target, nil
}
