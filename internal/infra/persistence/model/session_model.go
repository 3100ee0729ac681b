package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel mirrors the 'sessions' table. Each row owns exactly one live
// refresh token hash; rotation replaces the hash in place.
type SessionModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	UserAgent      string    `gorm:"type:text"`
	DeviceOS       string    `gorm:"type:varchar(50)"`
	DeviceBrowser  string    `gorm:"type:varchar(50)"`
	DeviceClass    string    `gorm:"type:varchar(20)"`
	IP             string    `gorm:"type:varchar(45)"`
	Location       string    `gorm:"type:varchar(100)"`
	TokenHash      string    `gorm:"type:varchar(255);unique;not null"`
	TokenExpiresAt *time.Time
	Active         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	LastSeenAt     time.Time
	ExpiresAt      time.Time `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}
