package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fitzty/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username", username)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email", email)
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id", id)
}

func (r *GORMUserRepository) first(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, column+" = ?", value).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user with %s %s: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s %s: %w", column, value, err)
	}
	return &user, nil
}

// IncrementXP adds delta in a single UPDATE so concurrent awards never lose writes.
func (r *GORMUserRepository) IncrementXP(ctx context.Context, id string, delta int) (int, error) {
	var xp int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		xp, err = incrementXP(tx, id, delta)
		return err
	})
	if err != nil {
		return 0, err
	}
	return xp, nil
}

func incrementXP(tx *gorm.DB, id string, delta int) (int, error) {
	res := tx.Model(&models.User{}).
		Where("id = ?", id).
		Update("xp", gorm.Expr("CASE WHEN xp + ? < 0 THEN 0 ELSE xp + ? END", delta, delta))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to increment xp for user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	var xp []int
	if err := tx.Model(&models.User{}).Where("id = ?", id).Pluck("xp", &xp).Error; err != nil {
		return 0, fmt.Errorf("failed to read xp for user %s: %w", id, err)
	}
	if len(xp) == 0 {
		return 0, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return xp[0], nil
}

// ApplyActivity runs the increment first so the user row is locked for the rest of
// the transaction and the streak is computed from a consistent last-active value.
func (r *GORMUserRepository) ApplyActivity(ctx context.Context, update ActivityUpdate) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := incrementXP(tx, update.UserID, update.XPDelta); err != nil {
			return err
		}
		if err := tx.First(&user, "id = ?", update.UserID).Error; err != nil {
			if isNotFound(err) {
				return fmt.Errorf("user with ID %s: %w", update.UserID, ErrNotFound)
			}
			return fmt.Errorf("failed to reload user %s: %w", update.UserID, err)
		}

		streak := update.Streak.Advance(user.LastActiveAt, user.Streak, update.Now)
		now := update.Now.UTC()
		if err := tx.Model(&models.User{}).Where("id = ?", update.UserID).Updates(map[string]any{
			"streak":         streak,
			"last_active_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update streak for user %s: %w", update.UserID, err)
		}
		user.Streak = streak
		user.LastActiveAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateAvatarConfig replaces the user's avatar configuration blob.
func (r *GORMUserRepository) UpdateAvatarConfig(ctx context.Context, id string, config datatypes.JSON) error {
	return r.updateColumn(ctx, id, "avatar_config", config)
}

// UpdateStyleSignature stores the latest generated style signature.
func (r *GORMUserRepository) UpdateStyleSignature(ctx context.Context, id, signature string) error {
	return r.updateColumn(ctx, id, "style_signature", signature)
}

func (r *GORMUserRepository) updateColumn(ctx context.Context, id, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s for user %s: %w", column, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
