package model

import (
	"time"

	"github.com/google/uuid"
)

// Message rows reference their conversation without a store-level cascade;
// owners delete messages before the conversation.
type Message struct {
	Id             uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID    `gorm:"type:uuid;not null;index"`
	Conversation   Conversation `gorm:"foreignKey:ConversationId;constraint:OnDelete:RESTRICT"`
	AccountId      *uuid.UUID   `gorm:"type:uuid;index"`
	Sender         string       `gorm:"type:varchar(32);not null"`
	Content        string       `gorm:"type:text;not null"`
	CreatedAt      time.Time    `gorm:"autoCreateTime;index"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageHistoryRow is the scan target for messages joined with conversations.
type MessageHistoryRow struct {
	Id                uuid.UUID
	ConversationId    uuid.UUID
	AccountId         *uuid.UUID
	Sender            string
	Content           string
	CreatedAt         time.Time
	ConversationTitle string
	ChatType          string
}
