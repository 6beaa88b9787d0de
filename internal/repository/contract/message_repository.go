package contract

import (
	"context"

	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	DeleteByConversationID(ctx context.Context, conversationId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindHistory returns the account's messages joined with their
	// conversation, newest first. An empty chatType means every type.
	FindHistory(ctx context.Context, accountId uuid.UUID, chatType string, limit int) ([]*entity.MessageHistoryItem, error)
}
