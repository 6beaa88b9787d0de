package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message is immutable once stored. AccountId is only set for messages
// written by the account owner; persona replies leave it nil.
type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	AccountId      *uuid.UUID
	Sender         string
	Content        string
	CreatedAt      time.Time
}

// MessageHistoryItem is a message joined with its conversation.
type MessageHistoryItem struct {
	Message
	ConversationTitle string
	ChatType          string
}
