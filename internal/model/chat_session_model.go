package model

import (
	"time"

	"gorm.io/datatypes"
)

type ChatSession struct {
	SessionId           string            `gorm:"type:varchar(64);primaryKey"`
	UserId              *string           `gorm:"type:varchar(64);index"`
	ConversationHistory datatypes.JSON    `gorm:"type:jsonb;not null;default:'[]'"`
	Preferences         datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt           time.Time         `gorm:"not null"`
	LastMessageAt       time.Time         `gorm:"not null"`
	ExpiresAt           time.Time         `gorm:"not null;index"`
	UpdatedAt           time.Time         `gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
