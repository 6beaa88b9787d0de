package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID
	AccountId uuid.UUID
	Title     string
	ChatType  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
