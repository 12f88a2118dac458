package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatermillPublisherGoChannel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	publisher, pubSub := NewGoChannelPublisher("course-review", testLogger())
	defer publisher.Close()

	topic := publisher.TopicName(ReviewCreated)
	if topic != "course-review.catalog" {
		t.Fatalf("TopicName() = %q", topic)
	}

	messages, err := pubSub.Subscribe(ctx, topic)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	event := NewEvent(ReviewCreated, map[string]interface{}{"course_id": "c-1", "rating": 7})
	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		if msg.UUID != event.ID {
			t.Errorf("message uuid = %q, want %q", msg.UUID, event.ID)
		}
		if got := msg.Metadata.Get("event_type"); got != string(ReviewCreated) {
			t.Errorf("event_type metadata = %q", got)
		}
		var decoded Event
		if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
			t.Fatalf("payload is not an event: %v", err)
		}
		if decoded.Data["course_id"] != "c-1" {
			t.Errorf("decoded data = %v", decoded.Data)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for the message")
	}
}

func TestEventNotifier(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEventPublisher(testLogger())
	notifier := NewEventNotifier(mock, testLogger())

	if err := notifier.SendPasswordReset(ctx, "ada@example.com", "http://app/reset/abc"); err != nil {
		t.Fatalf("SendPasswordReset() error = %v", err)
	}

	sent := mock.EventsOfType(PasswordResetRequested)
	if len(sent) != 1 {
		t.Fatalf("got %d reset events, want 1", len(sent))
	}
	if sent[0].Data["email"] != "ada@example.com" || sent[0].Data["reset_url"] != "http://app/reset/abc" {
		t.Errorf("event data = %v", sent[0].Data)
	}
	if sent[0].Type.Topic() != TopicNotifications {
		t.Errorf("reset event routed to %q", sent[0].Type.Topic())
	}

	mock.FailWith(errors.New("broker down"))
	if err := notifier.SendPasswordReset(ctx, "ada@example.com", "x"); err == nil {
		t.Error("SendPasswordReset() swallowed the publisher error")
	}
}
