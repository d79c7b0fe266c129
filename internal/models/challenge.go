package models

import "time"

// Challenge is a themed posting challenge users can join.
type Challenge struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;type:varchar(100)"`
	Title       string     `json:"title" gorm:"type:varchar(200);not null"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (Challenge) TableName() string { return "challenges" }

// OpenAt reports whether t falls inside the challenge window. A missing bound is
// unbounded on that side.
func (c Challenge) OpenAt(t time.Time) bool {
	if c.StartsAt != nil && t.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && t.After(*c.EndsAt) {
		return false
	}
	return true
}

// ChallengeEntry links a user (and optionally a post) to a challenge. At most one
// entry exists per (challenge, user).
type ChallengeEntry struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ChallengeID string    `json:"challengeId" gorm:"type:varchar(36);not null;index:idx_entry_pair,unique"`
	UserID      string    `json:"userId" gorm:"type:varchar(36);not null;index:idx_entry_pair,unique"`
	PostID      *string   `json:"postId,omitempty" gorm:"type:varchar(36)"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (ChallengeEntry) TableName() string { return "challenge_entries" }
