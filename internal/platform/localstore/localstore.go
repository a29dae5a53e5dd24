package localstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

// Store keeps uploaded files in a directory on local disk. Files are served
// back under PublicBaseURL.
type Store struct {
	log           *logger.Logger
	dir           string
	publicBaseURL string
}

func New(log *logger.Logger, dir, publicBaseURL string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("missing upload directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{
		log:           log.With("service", "LocalStore"),
		dir:           dir,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) UploadFile(ctx context.Context, key string, file io.Reader) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create dir for %q: %w", key, err)
	}
	// Write to a temp file first so readers never see a partial image.
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename %q: %w", key, err)
	}
	return nil
}

func (s *Store) DeleteFile(ctx context.Context, key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetPublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if s.publicBaseURL == "" {
		return "/uploads/" + key
	}
	return s.publicBaseURL + "/" + key
}

// resolve rejects keys that would escape the upload directory.
func (s *Store) resolve(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("empty key")
	}
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	target := filepath.Join(s.dir, clean)
	rel, err := filepath.Rel(s.dir, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return target, nil
}
