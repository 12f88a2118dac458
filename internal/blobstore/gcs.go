package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// GCSStore keeps blobs in a Google Cloud Storage bucket; references are gs:// URIs
type GCSStore struct {
	client *storage.Client
	bucket string
}

type GCSConfig struct {
	Bucket           string
	CredentialsFile  string
	EmulatorEndpoint string
}

func NewGCSStore(ctx context.Context, cfg GCSConfig) (*GCSStore, error) {
	var opts []option.ClientOption
	switch {
	case cfg.EmulatorEndpoint != "":
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(cfg.EmulatorEndpoint, "/"))
		opts = append(opts, option.WithoutAuthentication())
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile), option.WithScopes(storage.ScopeReadWrite))
	default:
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *GCSStore) Store(ctx context.Context, filename string, data []byte) (string, error) {
	contentType, err := ContentType(filename)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	key := "images/" + objectName(filename)
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return gcsScheme + s.bucket + "/" + key, nil
}

func (s *GCSStore) Remove(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, gcsScheme+s.bucket+"/")
	if !ok || key == "" {
		return fmt.Errorf("%w: %s", ErrUnknownReference, ref)
	}

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object: %w", err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
