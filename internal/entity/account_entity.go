package entity

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	Id          uuid.UUID
	Email       string
	DisplayName *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Name returns the display name or an empty string when unset.
func (a *Account) Name() string {
	if a == nil || a.DisplayName == nil {
		return ""
	}
	return *a.DisplayName
}
