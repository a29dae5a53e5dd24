package services

import (
	"context"
	"io"
)

// ContentStore persists uploaded images and rendered badges. Both the local
// disk store and the GCS bucket service satisfy it.
type ContentStore interface {
	UploadFile(ctx context.Context, key string, file io.Reader) error
	DeleteFile(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
