package model

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Account      Account   `gorm:"foreignKey:AccountId;constraint:OnDelete:CASCADE"`
	SessionToken string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
