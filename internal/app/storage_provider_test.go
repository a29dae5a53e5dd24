package app

import (
	"context"
	"errors"
	"testing"

	"github.com/mundotea/mundotea-backend/internal/platform/gcp"
	"github.com/mundotea/mundotea-backend/internal/platform/localstore"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}

func stubBucket(t *testing.T, fn func(gcp.StorageConfig, gcp.BucketConfig) (bucketStore, error)) {
	t.Helper()
	orig := openBucket
	t.Cleanup(func() { openBucket = orig })
	openBucket = func(_ context.Context, _ *logger.Logger, sc gcp.StorageConfig, bc gcp.BucketConfig) (bucketStore, error) {
		return fn(sc, bc)
	}
}

func TestResolveContentStoreLocal(t *testing.T) {
	dir := t.TempDir()
	p, err := resolveContentStore(context.Background(), newTestLogger(t), Config{ObjectStorageMode: "LOCAL", UploadDir: dir})
	if err != nil {
		t.Fatalf("resolveContentStore: %v", err)
	}
	if _, ok := p.Store.(*localstore.Store); !ok {
		t.Fatalf("store: want *localstore.Store got=%T", p.Store)
	}
	if p.ServedDir != dir || p.Mode != storageModeLocal {
		t.Fatalf("provider: got=%+v", p)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestResolveContentStoreConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		code gcp.ErrorCode
	}{
		{"invalid mode", Config{ObjectStorageMode: "s3"}, gcp.CodeInvalidMode},
		{"missing emulator host", Config{ObjectStorageMode: "gcs_emulator"}, gcp.CodeMissingEmulatorHost},
		{"invalid emulator host", Config{ObjectStorageMode: "gcs_emulator", StorageEmulatorHost: "fake-gcs:4443"}, gcp.CodeInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolveContentStore(context.Background(), newTestLogger(t), tc.cfg)
			if code := storageErrorCode(err); code != tc.code {
				t.Fatalf("code: want=%q got=%q (%v)", tc.code, code, err)
			}
		})
	}
}

func TestResolveContentStoreBucketConnectFailure(t *testing.T) {
	var got gcp.BucketConfig
	stubBucket(t, func(_ gcp.StorageConfig, bc gcp.BucketConfig) (bucketStore, error) {
		got = bc
		return nil, errors.New("dial tcp: connection refused")
	})

	_, err := resolveContentStore(context.Background(), newTestLogger(t), Config{
		ObjectStorageMode: "gcs",
		ImagesBucket:      "mundotea-imagens",
		ImagesCDNDomain:   "cdn.mundotea.com.br",
	})
	if code := storageErrorCode(err); code != gcp.CodeConnectFailed {
		t.Fatalf("code: want=%q got=%q (%v)", gcp.CodeConnectFailed, code, err)
	}
	if got.Name != "mundotea-imagens" || got.CDNDomain != "cdn.mundotea.com.br" {
		t.Fatalf("bucket config: got=%+v", got)
	}
}

func TestResolveContentStoreInfersEmulator(t *testing.T) {
	var gotMode gcp.Mode
	stubBucket(t, func(sc gcp.StorageConfig, _ gcp.BucketConfig) (bucketStore, error) {
		gotMode = sc.Mode
		return nil, errors.New("stub")
	})
	_, _ = resolveContentStore(context.Background(), newTestLogger(t), Config{
		StorageEmulatorHost: "http://fake-gcs:4443",
		ImagesBucket:        "b",
	})
	if gotMode != gcp.ModeEmulator {
		t.Fatalf("mode: want=%q got=%q", gcp.ModeEmulator, gotMode)
	}
}
