package model

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountId uuid.UUID `gorm:"type:uuid;not null;index"`
	Account   Account   `gorm:"foreignKey:AccountId;constraint:OnDelete:RESTRICT"`
	Title     string    `gorm:"type:text;not null"`
	ChatType  string    `gorm:"type:varchar(32);not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index"`
}

func (Conversation) TableName() string {
	return "conversations"
}
