package models

import "time"

// AvatarItem is an avatar customization item owned by a user. Rows are never deleted,
// so the owned set only grows.
type AvatarItem struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `json:"userId" gorm:"type:varchar(36);not null;index:idx_avatar_item_pair,unique"`
	ItemType   string     `json:"itemType" gorm:"type:varchar(32);not null"`
	ItemName   string     `json:"itemName" gorm:"type:varchar(200);not null;index:idx_avatar_item_pair,unique"`
	ItemImage  string     `json:"itemImage,omitempty" gorm:"type:text"`
	IsUnlocked bool       `json:"isUnlocked" gorm:"not null;default:false"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (AvatarItem) TableName() string { return "avatar_items" }
