package service

import (
	"context"
	"errors"

	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/pkg/events"
)

var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrInvalidSession       = entity.ErrInvalidSession
	ErrAccountNotFound      = errors.New("account not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidChatType      = errors.New("invalid chat type")
	ErrInvalidSender        = errors.New("sender does not belong to this chat type")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrChatTypeMismatch     = errors.New("chat type does not match the conversation")
	ErrMissingEmail         = errors.New("identity provider did not return an email")
)

// publishEvent is best effort. A nil publisher means NATS is not connected.
func publishEvent(ctx context.Context, p events.Publisher, log logger.ILogger, event events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
