package models

import (
	"time"

	"gorm.io/datatypes"
)

// User represents a member of the platform together with their progression state.
// Level is never stored; it is derived from XP on read.
type User struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username       string         `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email          string         `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password       string         `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Name           string         `json:"name,omitempty" gorm:"type:varchar(100)"`
	Image          string         `json:"image,omitempty" gorm:"type:text"`
	XP             int            `json:"xp" gorm:"not null;default:0"`
	Streak         int            `json:"streak" gorm:"not null;default:0"`
	LastActiveAt   *time.Time     `json:"lastActiveAt,omitempty"`
	AvatarConfig   datatypes.JSON `json:"avatarConfig,omitempty"`
	StyleSignature string         `json:"styleSignature,omitempty" gorm:"type:varchar(255)"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (User) TableName() string { return "users" }
