package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidSession marks a token that is unknown, expired or orphaned.
var ErrInvalidSession = errors.New("invalid or expired session")

type Session struct {
	Id           uuid.UUID
	AccountId    uuid.UUID
	SessionToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
