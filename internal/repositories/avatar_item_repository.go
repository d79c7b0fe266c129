package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fitzty/internal/models"
	"fitzty/internal/progression"
)

// AvatarItemRepository stores owned avatar items. Nothing here deletes rows.
type AvatarItemRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.AvatarItem, error)
	// Upsert inserts or refreshes an item by (user, name). It never clears IsUnlocked.
	Upsert(ctx context.Context, item *models.AvatarItem) error
	// GrantUnlocks inserts any missing catalog unlocks and returns how many were new.
	GrantUnlocks(ctx context.Context, userID string, unlocks []progression.Unlock) (int, error)
}

// GORMAvatarItemRepository is a GORM implementation of AvatarItemRepository.
type GORMAvatarItemRepository struct {
	db *gorm.DB
}

// NewGORMAvatarItemRepository creates a new instance of GORMAvatarItemRepository.
func NewGORMAvatarItemRepository(db *gorm.DB) *GORMAvatarItemRepository {
	return &GORMAvatarItemRepository{db: db}
}

func (r *GORMAvatarItemRepository) ListByUser(ctx context.Context, userID string) ([]models.AvatarItem, error) {
	items := []models.AvatarItem{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list avatar items of %s: %w", userID, err)
	}
	return items, nil
}

func (r *GORMAvatarItemRepository) Upsert(ctx context.Context, item *models.AvatarItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.IsUnlocked && item.UnlockedAt == nil {
		now := time.Now().UTC()
		item.UnlockedAt = &now
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"item_type", "item_image", "updated_at"}),
		}).Create(item).Error; err != nil {
			return fmt.Errorf("failed to upsert avatar item: %w", err)
		}
		if item.IsUnlocked {
			if err := tx.Model(&models.AvatarItem{}).
				Where("user_id = ? AND item_name = ? AND is_unlocked = ?", item.UserID, item.ItemName, false).
				Updates(map[string]any{"is_unlocked": true, "unlocked_at": time.Now().UTC()}).Error; err != nil {
				return fmt.Errorf("failed to unlock avatar item: %w", err)
			}
		}
		var stored models.AvatarItem
		if err := tx.First(&stored, "user_id = ? AND item_name = ?", item.UserID, item.ItemName).Error; err != nil {
			return fmt.Errorf("failed to reload avatar item: %w", err)
		}
		*item = stored
		return nil
	})
	return err
}

func (r *GORMAvatarItemRepository) GrantUnlocks(ctx context.Context, userID string, unlocks []progression.Unlock) (int, error) {
	if len(unlocks) == 0 {
		return 0, nil
	}
	granted := 0
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range unlocks {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.AvatarItem{
				ID:         uuid.New().String(),
				UserID:     userID,
				ItemType:   u.ItemType(),
				ItemName:   u.String(),
				IsUnlocked: true,
				UnlockedAt: &now,
			})
			if res.Error != nil {
				return fmt.Errorf("failed to grant unlock %s: %w", u.String(), res.Error)
			}
			if res.RowsAffected > 0 {
				granted++
				continue
			}
			// an item claimed earlier without the unlock flag is promoted, never demoted
			upd := tx.Model(&models.AvatarItem{}).
				Where("user_id = ? AND item_name = ? AND is_unlocked = ?", userID, u.String(), false).
				Updates(map[string]any{"is_unlocked": true, "unlocked_at": now})
			if upd.Error != nil {
				return fmt.Errorf("failed to grant unlock %s: %w", u.String(), upd.Error)
			}
			granted += int(upd.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return granted, nil
}
