package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// WatermillPublisher serializes events as JSON and hands them to a watermill publisher
type WatermillPublisher struct {
	publisher   message.Publisher
	topicPrefix string
	logger      *slog.Logger
}

func NewWatermillPublisher(publisher message.Publisher, topicPrefix string, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{
		publisher:   publisher,
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

// NewKafkaPublisher publishes to Kafka using the default watermill marshaler
func NewKafkaPublisher(brokers []string, topicPrefix string, logger *slog.Logger) (*WatermillPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return NewWatermillPublisher(publisher, topicPrefix, logger), nil
}

// NewGoChannelPublisher keeps events in process; the returned GoChannel can be subscribed to
func NewGoChannelPublisher(topicPrefix string, logger *slog.Logger) (*WatermillPublisher, *gochannel.GoChannel) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 128},
		watermill.NewSlogLogger(logger),
	)
	return NewWatermillPublisher(pubSub, topicPrefix, logger), pubSub
}

// TopicName returns the fully qualified topic for an event type
func (p *WatermillPublisher) TopicName(eventType EventType) string {
	if p.topicPrefix == "" {
		return eventType.Topic()
	}
	return p.topicPrefix + "." + eventType.Topic()
}

func (p *WatermillPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.SetContext(ctx)

	topic := p.TopicName(event.Type)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Type, topic, err)
	}

	p.logger.Debug("Event published", "event_id", event.ID, "event_type", event.Type, "topic", topic)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}
