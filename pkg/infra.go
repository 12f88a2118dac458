package pkg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/course-review-service/internal/blobstore"
	"github.com/SAP-F-2025/course-review-service/internal/config"
	"github.com/SAP-F-2025/course-review-service/internal/events"
)

// NewBlobStore builds the image store selected by BLOB_DRIVER
func NewBlobStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	switch cfg.Blob.Driver {
	case config.BlobDriverGCS:
		store, err := blobstore.NewGCSStore(ctx, blobstore.GCSConfig{
			Bucket:           cfg.Blob.GCSBucket,
			CredentialsFile:  cfg.Blob.GCSCredentialsFile,
			EmulatorEndpoint: cfg.Blob.GCSEmulatorEndpoint,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BlobDriverLocal:
		store, err := blobstore.NewLocalStore(cfg.Blob.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}
}

// NewEventPublisher publishes to Kafka when brokers are configured, otherwise in process
func NewEventPublisher(cfg *config.Config, logger *slog.Logger) (events.EventPublisher, error) {
	if len(cfg.Events.KafkaBrokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.TopicPrefix, logger)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	}
	logger.Warn("KAFKA_BROKERS not set, events stay in process")
	publisher, _ := events.NewGoChannelPublisher(cfg.Events.TopicPrefix, logger)
	return publisher, nil
}
