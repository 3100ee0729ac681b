package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditModel mirrors the append-only 'audit_logs' table.
type AuditModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Action    string     `gorm:"type:varchar(50);not null;index"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	EntityID  *uuid.UUID `gorm:"type:uuid"`
	Details   string     `gorm:"type:text"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (AuditModel) TableName() string {
	return "audit_logs"
}
