package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fitzty/internal/models"
)

// ToggleResult is the state of an interaction after a toggle.
type ToggleResult struct {
	// Active is true when the interaction exists after the toggle.
	Active bool
	// Created is true only when this call inserted the interaction row.
	Created bool
	// Count is the post's counter for this interaction kind after the toggle.
	Count int
	// AuthorID is the owner of the target post.
	AuthorID string
}

// InteractionRepository owns likes, saves and comments together with the post
// counters that mirror them.
type InteractionRepository interface {
	ToggleLike(ctx context.Context, userID, postID string) (ToggleResult, error)
	ToggleSave(ctx context.Context, userID, postID string) (ToggleResult, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, postID, commentID, userID string) error
	LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	SavedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
}

// GORMInteractionRepository is a GORM implementation of InteractionRepository.
type GORMInteractionRepository struct {
	db *gorm.DB
}

// NewGORMInteractionRepository creates a new instance of GORMInteractionRepository.
func NewGORMInteractionRepository(db *gorm.DB) *GORMInteractionRepository {
	return &GORMInteractionRepository{db: db}
}

// ToggleLike removes the user's like if present and creates it otherwise.
func (r *GORMInteractionRepository) ToggleLike(ctx context.Context, userID, postID string) (ToggleResult, error) {
	return r.toggle(ctx, "like_count", userID, postID, &models.Like{}, &models.Like{
		ID: uuid.New().String(), UserID: userID, PostID: postID,
	})
}

// ToggleSave removes the user's save if present and creates it otherwise.
func (r *GORMInteractionRepository) ToggleSave(ctx context.Context, userID, postID string) (ToggleResult, error) {
	return r.toggle(ctx, "save_count", userID, postID, &models.Save{}, &models.Save{
		ID: uuid.New().String(), UserID: userID, PostID: postID,
	})
}

// toggle deletes first and inserts only when nothing was deleted. The unique
// (user, post) index turns a concurrent double insert into a no-op, so the
// counter moves only for rows this transaction actually wrote or removed.
func (r *GORMInteractionRepository) toggle(ctx context.Context, counter, userID, postID string, model, row any) (ToggleResult, error) {
	var result ToggleResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authorID, err := postAuthor(tx, postID)
		if err != nil {
			return err
		}
		result.AuthorID = authorID

		del := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(model)
		if del.Error != nil {
			return fmt.Errorf("failed to remove interaction: %w", del.Error)
		}
		if del.RowsAffected > 0 {
			if err := adjustCounter(tx, postID, counter, -1); err != nil {
				return err
			}
		} else {
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
			if ins.Error != nil {
				return fmt.Errorf("failed to create interaction: %w", ins.Error)
			}
			result.Active = true
			if ins.RowsAffected > 0 {
				result.Created = true
				if err := adjustCounter(tx, postID, counter, 1); err != nil {
					return err
				}
			}
		}

		var counts []int
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Pluck(counter, &counts).Error; err != nil {
			return fmt.Errorf("failed to read %s: %w", counter, err)
		}
		if len(counts) > 0 {
			result.Count = counts[0]
		}
		return nil
	})
	if err != nil {
		return ToggleResult{}, err
	}
	return result, nil
}

// AddComment stores the comment and bumps the post's comment counter.
func (r *GORMInteractionRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if !comment.CreatedAt.IsZero() {
		comment.CreatedAt = comment.CreatedAt.UTC()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := postAuthor(tx, comment.PostID); err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return adjustCounter(tx, comment.PostID, "comment_count", 1)
	})
}

// DeleteComment removes a comment written by userID on postID.
func (r *GORMInteractionRepository) DeleteComment(ctx context.Context, postID, commentID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND post_id = ? AND user_id = ?", commentID, postID, userID).Delete(&models.Comment{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete comment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("comment with ID %s: %w", commentID, ErrNotFound)
		}
		return adjustCounter(tx, postID, "comment_count", -1)
	})
}

// LikedPostIDs reports which of postIDs userID has liked.
func (r *GORMInteractionRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	return r.memberships(ctx, &models.Like{}, userID, postIDs)
}

// SavedPostIDs reports which of postIDs userID has saved.
func (r *GORMInteractionRepository) SavedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	return r.memberships(ctx, &models.Save{}, userID, postIDs)
}

func (r *GORMInteractionRepository) memberships(ctx context.Context, model any, userID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(postIDs))
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	if err := r.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load viewer interactions: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func postAuthor(tx *gorm.DB, postID string) (string, error) {
	var authors []string
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Pluck("user_id", &authors).Error; err != nil {
		return "", fmt.Errorf("failed to get post by ID %s: %w", postID, err)
	}
	if len(authors) == 0 {
		return "", fmt.Errorf("post with ID %s: %w", postID, ErrNotFound)
	}
	return authors[0], nil
}

// adjustCounter moves a post counter by delta without letting it drop below zero.
func adjustCounter(tx *gorm.DB, postID, column string, delta int) error {
	expr := gorm.Expr(fmt.Sprintf("CASE WHEN %s + ? < 0 THEN 0 ELSE %s + ? END", column, column), delta, delta)
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumn(column, expr).Error; err != nil {
		return fmt.Errorf("failed to adjust %s: %w", column, err)
	}
	return nil
}
