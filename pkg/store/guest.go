package store

import (
	"context"
	"errors"
	"time"

	"tria-chat-be/pkg/persona"
)

var ErrGuestNotFound = errors.New("guest transcript not found")

// GuestTranscript is the unpersisted conversation of a visitor without an
// account. It expires after a period of inactivity.
type GuestTranscript struct {
	ID        string          `json:"id"`
	ChatType  string          `json:"chat_type"`
	Entries   []persona.Entry `json:"entries"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GuestStore keeps guest transcripts. Append creates the transcript when it
// does not exist yet.
type GuestStore interface {
	Get(ctx context.Context, id string) (*GuestTranscript, error)
	Append(ctx context.Context, id, chatType string, entry persona.Entry) error
	Delete(ctx context.Context, id string) error
}
