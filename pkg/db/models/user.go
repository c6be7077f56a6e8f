package models

import (
	"time"

	"github.com/azulretail/pos-backend/pkg/enums"
)

// User is a staff account able to operate the register.
type User struct {
	ID                 int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Username           string     `gorm:"column:username;not null;uniqueIndex"`
	PasswordHash       string     `gorm:"column:password_hash;not null"`
	FirstName          string     `gorm:"column:first_name;not null"`
	LastName           string     `gorm:"column:last_name;not null"`
	Phone              string     `gorm:"column:phone;not null"`
	Role               enums.Role `gorm:"column:role;not null"`
	PhotoURL           *string    `gorm:"column:photo_url"`
	MustChangePassword bool       `gorm:"column:must_change_password;not null;default:false"`
	IsActive           bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (User) TableName() string { return "users" }
