// Package blobstore keeps uploaded images outside the database and hands
// back an opaque reference string for the owning record.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnknownReference = errors.New("blob reference not owned by this store")
	ErrUnsupportedType  = errors.New("unsupported image type")
)

type Store interface {
	// Store saves data and returns the reference to persist
	Store(ctx context.Context, filename string, data []byte) (string, error)
	// Remove deletes the blob behind ref
	Remove(ctx context.Context, ref string) error
}

var allowedExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ContentType returns the image content type for filename, or an error for
// anything that is not a png or jpeg
func ContentType(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ct, ok := allowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w %q, only png and jpeg are accepted", ErrUnsupportedType, ext)
	}
	return ct, nil
}

// objectName builds a collision free key that keeps the original extension
func objectName(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}
