package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fitzty/internal/models"
)

// ClosetRepository defines the interface for closet data access.
type ClosetRepository interface {
	Create(ctx context.Context, item *models.ClosetItem) error
	// ListByUser returns newest first; an empty category means all categories.
	ListByUser(ctx context.Context, userID, category string) ([]models.ClosetItem, error)
}

// GORMClosetRepository is a GORM implementation of ClosetRepository.
type GORMClosetRepository struct {
	db *gorm.DB
}

// NewGORMClosetRepository creates a new instance of GORMClosetRepository.
func NewGORMClosetRepository(db *gorm.DB) *GORMClosetRepository {
	return &GORMClosetRepository{db: db}
}

func (r *GORMClosetRepository) Create(ctx context.Context, item *models.ClosetItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create closet item: %w", err)
	}
	return nil
}

func (r *GORMClosetRepository) ListByUser(ctx context.Context, userID, category string) ([]models.ClosetItem, error) {
	items := []models.ClosetItem{}
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list closet of %s: %w", userID, err)
	}
	return items, nil
}
