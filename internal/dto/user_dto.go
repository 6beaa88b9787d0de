package dto

import (
	"time"

	"github.com/google/uuid"
)

type AccountResponse struct {
	Id          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateProfileRequest: a blank display name leaves the profile unchanged.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"max=100"`
}

type DeleteAccountResponse struct {
	Message string `json:"message"`
}

type ExportConversation struct {
	ConversationResponse
	Messages []MessageResponse `json:"messages"`
}

type ExportResponse struct {
	ExportedAt    time.Time            `json:"exported_at"`
	Account       AccountResponse      `json:"account"`
	Conversations []ExportConversation `json:"conversations"`
	Emailed       bool                 `json:"emailed"`
}
