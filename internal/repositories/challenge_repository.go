package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fitzty/internal/models"
)

var (
	// ErrChallengeClosed is returned for a join outside [StartsAt, EndsAt].
	ErrChallengeClosed = errors.New("challenge is not open")

	// ErrPostNotOwned is returned when an entry names a post the user did not write.
	ErrPostNotOwned = errors.New("post does not belong to user")

	// ErrDuplicateSlug is returned when a challenge slug is already taken.
	ErrDuplicateSlug = errors.New("challenge slug already taken")
)

// EntryFields are the mutable fields of a challenge entry. At is the join time
// checked against the challenge window.
type EntryFields struct {
	PostID *string
	At     time.Time
}

// ChallengeRepository defines the interface for challenge data access.
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	GetByID(ctx context.Context, id string) (*models.Challenge, error)
	// List returns challenges newest first. A non-nil openAt keeps only the
	// challenges whose window contains it.
	List(ctx context.Context, openAt *time.Time, limit int) ([]models.Challenge, error)
	// UpsertEntry keeps at most one entry per (challenge, user). created is true
	// only for the call that inserted it.
	UpsertEntry(ctx context.Context, challengeID, userID string, fields EntryFields) (entry *models.ChallengeEntry, created bool, err error)
}

// GORMChallengeRepository is a GORM implementation of ChallengeRepository.
type GORMChallengeRepository struct {
	db *gorm.DB
}

// NewGORMChallengeRepository creates a new instance of GORMChallengeRepository.
func NewGORMChallengeRepository(db *gorm.DB) *GORMChallengeRepository {
	return &GORMChallengeRepository{db: db}
}

// Create creates a new challenge in the database.
func (r *GORMChallengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	if challenge.ID == "" {
		challenge.ID = uuid.New().String()
	}
	challenge.StartsAt = utcPtr(challenge.StartsAt)
	challenge.EndsAt = utcPtr(challenge.EndsAt)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Challenge{}).Where("slug = ?", challenge.Slug).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check challenge slug %s: %w", challenge.Slug, err)
		}
		if n > 0 {
			return fmt.Errorf("challenge %s: %w", challenge.Slug, ErrDuplicateSlug)
		}
		if err := tx.Create(challenge).Error; err != nil {
			return fmt.Errorf("failed to create challenge: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a challenge by its ID.
func (r *GORMChallengeRepository) GetByID(ctx context.Context, id string) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("challenge with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get challenge by ID %s: %w", id, err)
	}
	return &challenge, nil
}

func (r *GORMChallengeRepository) List(ctx context.Context, openAt *time.Time, limit int) ([]models.Challenge, error) {
	q := r.db.WithContext(ctx).Model(&models.Challenge{})
	if openAt != nil {
		at := openAt.UTC()
		q = q.Where("(starts_at IS NULL OR starts_at <= ?) AND (ends_at IS NULL OR ends_at >= ?)", at, at)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	challenges := []models.Challenge{}
	if err := q.Order("created_at DESC, id").Find(&challenges).Error; err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

func (r *GORMChallengeRepository) UpsertEntry(ctx context.Context, challengeID, userID string, fields EntryFields) (*models.ChallengeEntry, bool, error) {
	var (
		entry   models.ChallengeEntry
		created bool
	)
	at := fields.At
	if at.IsZero() {
		at = time.Now()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var challenge models.Challenge
		if err := tx.First(&challenge, "id = ?", challengeID).Error; err != nil {
			if isNotFound(err) {
				return fmt.Errorf("challenge with ID %s: %w", challengeID, ErrNotFound)
			}
			return fmt.Errorf("failed to get challenge by ID %s: %w", challengeID, err)
		}
		if !challenge.OpenAt(at) {
			return fmt.Errorf("challenge with ID %s: %w", challengeID, ErrChallengeClosed)
		}

		if fields.PostID != nil {
			var owned int64
			if err := tx.Model(&models.Post{}).Where("id = ? AND user_id = ?", *fields.PostID, userID).Count(&owned).Error; err != nil {
				return fmt.Errorf("failed to check post %s: %w", *fields.PostID, err)
			}
			if owned == 0 {
				return fmt.Errorf("post with ID %s: %w", *fields.PostID, ErrPostNotOwned)
			}
		}

		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ChallengeEntry{
			ID:          uuid.New().String(),
			ChallengeID: challengeID,
			UserID:      userID,
			PostID:      fields.PostID,
		})
		if ins.Error != nil {
			return fmt.Errorf("failed to create challenge entry: %w", ins.Error)
		}
		created = ins.RowsAffected > 0

		if !created && fields.PostID != nil {
			if err := tx.Model(&models.ChallengeEntry{}).
				Where("challenge_id = ? AND user_id = ?", challengeID, userID).
				Update("post_id", *fields.PostID).Error; err != nil {
				return fmt.Errorf("failed to update challenge entry: %w", err)
			}
		}
		if err := tx.First(&entry, "challenge_id = ? AND user_id = ?", challengeID, userID).Error; err != nil {
			return fmt.Errorf("failed to reload challenge entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &entry, created, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
