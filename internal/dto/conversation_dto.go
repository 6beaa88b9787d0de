package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	Title    string `json:"title" validate:"max=200"`
	ChatType string `json:"chat_type" validate:"required,oneof=dual-persona study-pair"`
}

// RenameConversationRequest: a blank title is accepted and ignored.
type RenameConversationRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type ConversationResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ChatType  string    `json:"chat_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageResponse struct {
	Id             uuid.UUID `json:"id"`
	ConversationId uuid.UUID `json:"conversation_id"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type HistoryItemResponse struct {
	MessageResponse
	ConversationTitle string `json:"conversation_title"`
	ChatType          string `json:"chat_type"`
}

type DeleteConversationResponse struct {
	Id uuid.UUID `json:"id"`
}
