package models

import (
	"time"

	"gorm.io/datatypes"
)

// ClosetItem is a garment in a user's digital closet.
type ClosetItem struct {
	ID          string                      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string                      `json:"userId" gorm:"type:varchar(36);not null;index:idx_closet_user"`
	Name        string                      `json:"name" gorm:"type:varchar(200);not null"`
	Description string                      `json:"description,omitempty" gorm:"type:text"`
	Image       string                      `json:"image" gorm:"type:text;not null"`
	Category    string                      `json:"category" gorm:"type:varchar(64);not null"`
	Brand       string                      `json:"brand,omitempty" gorm:"type:varchar(100)"`
	Color       string                      `json:"color,omitempty" gorm:"type:varchar(64)"`
	Price       *float64                    `json:"price,omitempty"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	IsPublic    bool                        `json:"isPublic" gorm:"not null;default:false"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

func (ClosetItem) TableName() string { return "closet_items" }
