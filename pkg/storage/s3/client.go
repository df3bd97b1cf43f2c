package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/multierr"

	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

// Client stores product images in an S3-compatible bucket. Supabase Storage
// exposes one, so the same client serves hosted and local MinIO setups.
type Client struct {
	api        objectAPI
	bucket     string
	publicBase string
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient dials the configured endpoint and verifies the bucket exists.
func NewClient(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("storage endpoint and credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	client := newClient(mc, cfg.Bucket, publicBase)
	if err := client.Ping(ctx); err != nil {
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.Bucket), "object storage ready")
	}
	return client, nil
}

func newClient(api objectAPI, bucket, publicBase string) *Client {
	return &Client{
		api:        api,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// Ping checks that the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return errors.New("storage client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	ok, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", c.bucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", c.bucket)
	}
	return nil
}

// Upload writes data at objectPath and returns its public URL.
func (c *Client) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	objectPath = strings.TrimLeft(objectPath, "/")
	if objectPath == "" {
		return "", errors.New("object path is required")
	}
	_, err := c.api.PutObject(ctx, c.bucket, objectPath, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=3600",
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", objectPath, err)
	}
	return c.PublicURL(objectPath), nil
}

// Remove deletes every object path, collecting all failures.
func (c *Client) Remove(ctx context.Context, objectPaths ...string) error {
	var errs error
	for _, p := range objectPaths {
		p = strings.TrimLeft(p, "/")
		if p == "" {
			continue
		}
		if err := c.api.RemoveObject(ctx, c.bucket, p, minio.RemoveObjectOptions{}); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("removing %s: %w", p, err))
		}
	}
	return errs
}

// PublicURL returns the browser-facing URL for objectPath.
func (c *Client) PublicURL(objectPath string) string {
	return c.publicBase + "/" + strings.TrimLeft(objectPath, "/")
}

// ObjectPath reverses PublicURL. URLs from a different base fall back to
// their last path segment.
func (c *Client) ObjectPath(publicURL string) string {
	if rest, ok := strings.CutPrefix(publicURL, c.publicBase+"/"); ok {
		if unescaped, err := url.PathUnescape(rest); err == nil {
			return unescaped
		}
		return rest
	}
	parsed, err := url.Parse(publicURL)
	if err != nil || parsed.Path == "" {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "/" || base == "." {
		return ""
	}
	return base
}

// ImageObjectPath builds <productID>/<unixmillis>-<index>.<ext>.
func ImageObjectPath(productID int64, at time.Time, index int, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%d/%d-%d.%s", productID, at.UnixMilli(), index, ext)
}
