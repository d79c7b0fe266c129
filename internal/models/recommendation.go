package models

import (
	"time"

	"gorm.io/datatypes"
)

// RecommendationType enumerates what a recommendation points at.
type RecommendationType string

const (
	RecommendationStyle     RecommendationType = "style"
	RecommendationItem      RecommendationType = "item"
	RecommendationOutfit    RecommendationType = "outfit"
	RecommendationChallenge RecommendationType = "challenge"
)

// Valid reports whether t is one of the known recommendation types.
func (t RecommendationType) Valid() bool {
	switch t {
	case RecommendationStyle, RecommendationItem, RecommendationOutfit, RecommendationChallenge:
		return true
	}
	return false
}

// Recommendation is written once per generation cycle; only IsRead changes afterwards.
// Score is always within [0, 1].
type Recommendation struct {
	ID        string             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string             `json:"userId" gorm:"type:varchar(36);not null;index:idx_rec_user_created,priority:1"`
	Type      RecommendationType `json:"type" gorm:"type:varchar(16);not null"`
	Content   datatypes.JSON     `json:"content"`
	Score     float64            `json:"score" gorm:"not null;default:0"`
	IsRead    bool               `json:"isRead" gorm:"not null;default:false"`
	CreatedAt time.Time          `json:"createdAt" gorm:"index:idx_rec_user_created,priority:2"`
}

func (Recommendation) TableName() string { return "recommendations" }

// RecommendationContent is the payload stored in Recommendation.Content.
type RecommendationContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Reasoning   string   `json:"reasoning"`
}
