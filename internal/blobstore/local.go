package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes blobs under a directory on disk; references are file paths
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve blob dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}
	return &LocalStore{dir: abs}, nil
}

func (s *LocalStore) Store(_ context.Context, filename string, data []byte) (string, error) {
	if _, err := ContentType(filename); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, objectName(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return path, nil
}

func (s *LocalStore) Remove(_ context.Context, ref string) error {
	path := filepath.Clean(ref)
	if !strings.HasPrefix(path, s.dir+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrUnknownReference, ref)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}
