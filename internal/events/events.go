// Package events publishes domain events and outbound notifications through
// watermill. Publishing is best-effort from the caller's point of view.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	ReviewCreated          EventType = "review.created"
	ReviewUpdated          EventType = "review.updated"
	ReviewDeleted          EventType = "review.deleted"
	CourseRatingUpdated    EventType = "course.rating_updated"
	CourseDeleted          EventType = "course.deleted"
	DisciplineDeleted      EventType = "discipline.deleted"
	UserDeleted            EventType = "user.deleted"
	PasswordResetRequested EventType = "user.password_reset_requested"
)

const (
	TopicCatalog       = "catalog"
	TopicNotifications = "notifications"
)

// Topic returns the topic an event type is routed to
func (t EventType) Topic() string {
	if t == PasswordResetRequested {
		return TopicNotifications
	}
	return TopicCatalog
}

type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func NewEvent(eventType EventType, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "course-review-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
