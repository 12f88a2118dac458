package events

import (
	"context"
	"log/slog"
)

// Notifier delivers out-of-band messages to users
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, resetURL string) error
}

// EventNotifier hands notifications to the mail worker as events
type EventNotifier struct {
	publisher EventPublisher
	logger    *slog.Logger
}

func NewEventNotifier(publisher EventPublisher, logger *slog.Logger) *EventNotifier {
	return &EventNotifier{publisher: publisher, logger: logger}
}

func (n *EventNotifier) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	event := NewEvent(PasswordResetRequested, map[string]interface{}{
		"email":     email,
		"reset_url": resetURL,
		"subject":   "Password reset token",
	})
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.Error("Failed to queue password reset mail", "error", err)
		return err
	}
	return nil
}
