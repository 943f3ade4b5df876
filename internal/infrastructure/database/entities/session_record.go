package entities

import (
	"time"

	"gorm.io/datatypes"
)

// SessionRecord is the persisted conversation session row.
type SessionRecord struct {
	UserID    string         `gorm:"type:varchar(64);primaryKey"`
	Step      string         `gorm:"type:varchar(32);not null"`
	Data      datatypes.JSON `gorm:"not null"`
	Version   int64          `gorm:"not null"`
	ExpiresAt time.Time      `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SessionRecord) TableName() string {
	return "conversation_sessions"
}
