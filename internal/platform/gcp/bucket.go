package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

const (
	uploadTimeout = 2 * time.Minute
	deleteTimeout = 30 * time.Second
)

// BucketConfig names the bucket holding session images and badges.
type BucketConfig struct {
	Name          string
	CDNDomain     string
	PublicBaseURL string
	Credentials   string
}

// Bucket stores objects in one GCS bucket.
type Bucket struct {
	log    *logger.Logger
	client *storage.Client
	name   string
	urlFor func(key string) string
}

func NewBucket(ctx context.Context, log *logger.Logger, sc StorageConfig, bc BucketConfig) (*Bucket, error) {
	name := strings.TrimSpace(bc.Name)
	if name == "" {
		return nil, &ConfigError{Code: CodeConnectFailed, Cause: fmt.Errorf("missing IMAGES_GCS_BUCKET_NAME")}
	}
	urlFor, err := publicURLFunc(sc, bc, name)
	if err != nil {
		return nil, err
	}
	client, err := newClient(ctx, sc, bc.Credentials)
	if err != nil {
		return nil, &ConfigError{Code: CodeConnectFailed, Cause: err}
	}
	log = log.With("service", "Bucket", "bucket", name)
	log.Info("Object storage ready", "mode", sc.Mode, "inferred", sc.Inferred)
	return &Bucket{log: log, client: client, name: name, urlFor: urlFor}, nil
}

func newClient(ctx context.Context, sc StorageConfig, credentials string) (*storage.Client, error) {
	if sc.Emulated() {
		// The storage client only honors the emulator through this variable.
		if err := os.Setenv("STORAGE_EMULATOR_HOST", sc.EmulatorHost); err != nil {
			return nil, err
		}
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append(ClientOptions(credentials), option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

// publicURLFunc picks how object URLs are built: CDN domain first, then an
// explicit base URL, then the emulator media endpoint, then public GCS.
func publicURLFunc(sc StorageConfig, bc BucketConfig, bucket string) (func(string) string, error) {
	if cdn := strings.TrimSpace(bc.CDNDomain); cdn != "" {
		return func(key string) string { return "https://" + cdn + "/" + key }, nil
	}
	if base := strings.TrimRight(strings.TrimSpace(bc.PublicBaseURL), "/"); base != "" {
		if !absoluteURL(base) {
			return nil, &ConfigError{Code: CodeInvalidPublicURL, Value: base}
		}
		return func(key string) string { return base + "/" + bucket + "/" + key }, nil
	}
	if sc.Emulated() {
		host := sc.EmulatorHost
		return func(key string) string {
			return host + "/storage/v1/b/" + url.PathEscape(bucket) + "/o/" + url.PathEscape(key) + "?alt=media"
		}, nil
	}
	return func(key string) string { return "https://storage.googleapis.com/" + bucket + "/" + key }, nil
}

func (b *Bucket) UploadFile(ctx context.Context, key string, file io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := b.client.Bucket(b.name).Object(key).NewWriter(ctx)
	w.ContentType = ContentTypeForKey(key)
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gcs object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gcs object %q: %w", key, err)
	}
	return nil
}

func (b *Bucket) DeleteFile(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()
	if err := b.client.Bucket(b.name).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete gcs object %q: %w", key, err)
	}
	return nil
}

func (b *Bucket) GetPublicURL(key string) string {
	return b.urlFor(strings.TrimLeft(strings.TrimSpace(key), "/"))
}

func (b *Bucket) Close() error { return b.client.Close() }

// ContentTypeForKey maps an image file extension to its MIME type.
func ContentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(strings.TrimSpace(key))) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return ""
	}
}
