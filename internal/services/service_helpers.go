package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/course-review-service/internal/blobstore"
	"github.com/SAP-F-2025/course-review-service/internal/events"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
)

const (
	defaultUserPageSize = 20
	maxUserPageSize     = 100
)

// isValidID rejects malformed ids before any query is issued
func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isValidSlug(slug string) bool {
	return utils.IsValidSlug(slug)
}

// validateImage checks the upload before anything is written
func validateImage(image *ImageUpload) ValidationErrors {
	if image == nil {
		return nil
	}
	if len(image.Data) == 0 {
		return fieldError("image", "The uploaded image is empty.", "required")
	}
	if _, err := blobstore.ContentType(image.Filename); err != nil {
		return fieldError("image", "Images must be png or jpeg files.", "image_type")
	}
	return nil
}

// storeImage uploads image and returns its reference, nil when there is no image
func storeImage(ctx context.Context, blobs blobstore.Store, image *ImageUpload) (*string, error) {
	if image == nil {
		return nil, nil
	}
	if blobs == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}
	ref, err := blobs.Store(ctx, image.Filename, image.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	return &ref, nil
}

// translateDuplicate maps a unique index violation that slipped past the
// existence checks to the resource's conflict error
func translateDuplicate(err error, conflict *ConflictError) error {
	if repositories.IsDuplicateError(err) {
		return conflict
	}
	return err
}

// publishEvent is best-effort; callers publish only after their transaction commits
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType events.EventType, data map[string]interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultUserPageSize
	}
	if limit > maxUserPageSize {
		limit = maxUserPageSize
	}
	return page, limit
}
