package models

import "time"

// Session is the single durable login record kept per user.
type Session struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       int64     `gorm:"column:user_id;not null;uniqueIndex"`
	Token        string    `gorm:"column:token;not null"`
	IPAddress    string    `gorm:"column:ip_address;not null"`
	UserAgent    string    `gorm:"column:user_agent;not null"`
	LastActivity time.Time `gorm:"column:last_activity;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (Session) TableName() string { return "sessions" }
