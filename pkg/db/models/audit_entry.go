package models

import (
	"time"

	"github.com/azulretail/pos-backend/pkg/enums"
)

// AuditEntry is one immutable row in the append-only action log.
type AuditEntry struct {
	ID          int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      int64             `gorm:"column:user_id;not null"`
	User        *User             `gorm:"foreignKey:UserID"`
	Action      enums.AuditAction `gorm:"column:action;not null"`
	Description string            `gorm:"column:description;not null"`
	IPAddress   string            `gorm:"column:ip_address;not null"`
	UserAgent   string            `gorm:"column:user_agent;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (AuditEntry) TableName() string { return "audit_entries" }
