package app

import (
	"context"
	"errors"
	"strings"

	"github.com/mundotea/mundotea-backend/internal/platform/gcp"
	"github.com/mundotea/mundotea-backend/internal/platform/localstore"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
	"github.com/mundotea/mundotea-backend/internal/services"
)

const storageModeLocal = "local"

type bucketStore interface {
	services.ContentStore
	Close() error
}

var openBucket = func(ctx context.Context, log *logger.Logger, sc gcp.StorageConfig, bc gcp.BucketConfig) (bucketStore, error) {
	return gcp.NewBucket(ctx, log, sc, bc)
}

// StorageProvider is the selected content store plus the directory to serve
// under /uploads when files live on local disk.
type StorageProvider struct {
	Store     services.ContentStore
	Mode      string
	ServedDir string
	close     func() error
}

func (p StorageProvider) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

func resolveContentStore(ctx context.Context, log *logger.Logger, cfg Config) (StorageProvider, error) {
	rawMode := strings.ToLower(strings.TrimSpace(cfg.ObjectStorageMode))
	if rawMode == storageModeLocal {
		store, err := localstore.New(log, cfg.UploadDir, cfg.UploadPublicBaseURL)
		if err != nil {
			return StorageProvider{}, &gcp.ConfigError{Code: gcp.CodeConnectFailed, Value: rawMode, Cause: err}
		}
		log.Info("Selecting object storage provider", "mode", rawMode, "dir", store.Dir())
		return StorageProvider{Store: store, Mode: rawMode, ServedDir: store.Dir()}, nil
	}

	sc, err := gcp.ResolveStorageConfig(rawMode, cfg.StorageEmulatorHost)
	if err == nil {
		log.Info("Selecting object storage provider", "mode", sc.Mode, "inferred", sc.Inferred, "emulator_host", sc.EmulatorHost)
		var bucket bucketStore
		bucket, err = openBucket(ctx, log, sc, gcp.BucketConfig{
			Name:          cfg.ImagesBucket,
			CDNDomain:     cfg.ImagesCDNDomain,
			PublicBaseURL: cfg.UploadPublicBaseURL,
			Credentials:   cfg.GCPCredentials,
		})
		if err == nil {
			return StorageProvider{Store: bucket, Mode: string(sc.Mode), close: bucket.Close}, nil
		}
	}
	log.Error("Object storage provider bootstrap failed", "mode", rawMode, "error_code", storageErrorCode(err), "error", err)
	return StorageProvider{}, err
}

func storageErrorCode(err error) gcp.ErrorCode {
	var cfgErr *gcp.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code
	}
	return gcp.CodeConnectFailed
}
