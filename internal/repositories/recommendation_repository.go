package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fitzty/internal/models"
)

// RecommendationRepository defines the interface for recommendation data access.
type RecommendationRepository interface {
	CreateBatch(ctx context.Context, recs []models.Recommendation) error
	// ListByUser returns the newest recommendations; an empty type means all types.
	ListByUser(ctx context.Context, userID string, typ models.RecommendationType, limit int) ([]models.Recommendation, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// GORMRecommendationRepository is a GORM implementation of RecommendationRepository.
type GORMRecommendationRepository struct {
	db *gorm.DB
}

// NewGORMRecommendationRepository creates a new instance of GORMRecommendationRepository.
func NewGORMRecommendationRepository(db *gorm.DB) *GORMRecommendationRepository {
	return &GORMRecommendationRepository{db: db}
}

// CreateBatch writes one generation cycle atomically.
func (r *GORMRecommendationRepository) CreateBatch(ctx context.Context, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	for i := range recs {
		if recs[i].ID == "" {
			recs[i].ID = uuid.New().String()
		}
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&recs, 100).Error; err != nil {
		return fmt.Errorf("failed to create recommendations: %w", err)
	}
	return nil
}

func (r *GORMRecommendationRepository) ListByUser(ctx context.Context, userID string, typ models.RecommendationType, limit int) ([]models.Recommendation, error) {
	recs := []models.Recommendation{}
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list recommendations for %s: %w", userID, err)
	}
	return recs, nil
}

// MarkRead flips the read flag, the only mutable field.
func (r *GORMRecommendationRepository) MarkRead(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).Model(&models.Recommendation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark recommendation %s read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recommendation with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
