package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type ByChatType struct {
	ChatType string
}

func (s ByChatType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_type = ?", s.ChatType)
}
