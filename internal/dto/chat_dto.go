package dto

import (
	"time"

	"github.com/google/uuid"
)

// SendMessageRequest starts one turn. Authenticated callers pass
// ConversationId (or none to start a new conversation); guests pass the
// GuestId they got back from their previous turn.
type SendMessageRequest struct {
	Message        string     `json:"message" validate:"max=8000"`
	ConversationId *uuid.UUID `json:"conversation_id"`
	GuestId        string     `json:"guest_id" validate:"omitempty,uuid"`
	ChatType       string     `json:"chat_type" validate:"omitempty,oneof=dual-persona study-pair"`
	Model          string     `json:"model"`
}

type TranscriptEntryResponse struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type SendMessageResponse struct {
	ConversationId *uuid.UUID                `json:"conversation_id,omitempty"`
	GuestId        string                    `json:"guest_id,omitempty"`
	ChatType       string                    `json:"chat_type"`
	Model          string                    `json:"model"`
	LiveInfo       bool                      `json:"live_info"`
	Messages       []TranscriptEntryResponse `json:"messages"`
}

type PersonaSpeaker struct {
	Sender string `json:"sender"`
	Label  string `json:"label"`
}

type PersonaPairResponse struct {
	ChatType  string           `json:"chat_type"`
	UserLabel string           `json:"user_label"`
	Personas  []PersonaSpeaker `json:"personas"`
}

// PublishTranscriptEntryMessage is the payload on the transcript topic.
type PublishTranscriptEntryMessage struct {
	ConversationId uuid.UUID  `json:"conversation_id"`
	AccountId      *uuid.UUID `json:"account_id,omitempty"`
	Sender         string     `json:"sender"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
}
