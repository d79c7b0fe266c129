package models

import "time"

// Like is a user's like on a post; unique per (user, post).
type Like struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;index:idx_like_pair,unique"`
	PostID    string    `json:"postId" gorm:"type:varchar(36);not null;index:idx_like_pair,unique;index:idx_like_post"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Like) TableName() string { return "likes" }

// Save is a user's bookmark on a post; unique per (user, post).
type Save struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;index:idx_save_pair,unique"`
	PostID    string    `json:"postId" gorm:"type:varchar(36);not null;index:idx_save_pair,unique;index:idx_save_post"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Save) TableName() string { return "saves" }

// Comment on a post.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;index:idx_comment_user"`
	PostID    string    `json:"postId" gorm:"type:varchar(36);not null;index:idx_comment_post"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Comment) TableName() string { return "comments" }

// Follow (A follows B).
type Follow struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	FollowerID string `gorm:"type:varchar(36);index:idx_follow_follower;index:idx_follow_pair,unique;not null"`
	FolloweeID string `gorm:"type:varchar(36);not null;index:idx_follow_pair,unique;index:idx_follow_followee"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Follow) TableName() string { return "follows" }
