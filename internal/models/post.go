package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post is a piece of outfit content. The engagement counters are maintained in the
// same transaction as the interaction rows they count and are never edited directly.
type Post struct {
	ID           string                      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string                      `json:"userId" gorm:"type:varchar(36);index:idx_post_author;not null"`
	User         *User                       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Content      string                      `json:"content,omitempty" gorm:"type:text"`
	Images       datatypes.JSONSlice[string] `json:"images"`
	AvatarImage  string                      `json:"avatarImage,omitempty" gorm:"type:text"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Style        string                      `json:"style,omitempty" gorm:"type:varchar(64);index:idx_post_style"`
	Brand        string                      `json:"brand,omitempty" gorm:"type:varchar(100)"`
	Color        string                      `json:"color,omitempty" gorm:"type:varchar(64)"`
	Price        string                      `json:"price,omitempty" gorm:"type:varchar(32)"`
	IsPublic     bool                        `json:"isPublic" gorm:"not null;index:idx_post_public_created,priority:1"`
	LikeCount    int                         `json:"likeCount" gorm:"not null;default:0"`
	CommentCount int                         `json:"commentCount" gorm:"not null;default:0"`
	SaveCount    int                         `json:"saveCount" gorm:"not null;default:0"`
	CreatedAt    time.Time                   `json:"createdAt" gorm:"index:idx_post_public_created,priority:2"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }

// PostTag is the normalized form of Post.Tags used for tag-intersection queries.
// Rows are written in the same transaction as the post.
type PostTag struct {
	PostID string `gorm:"primaryKey;type:varchar(36)"`
	Tag    string `gorm:"primaryKey;type:varchar(64);index:idx_post_tag"`
}

func (PostTag) TableName() string { return "post_tags" }

// FeedPost is a post annotated for a specific viewer. The flags are computed at read
// time and never stored.
type FeedPost struct {
	Post
	EngagementScore int  `json:"engagementScore"`
	IsLiked         bool `json:"isLiked"`
	IsSaved         bool `json:"isSaved"`
}
