package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fitzty/internal/models"
	"fitzty/internal/ranking"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{db: db}
}

// Create inserts the post and its normalized tag rows together.
func (r *GORMPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if !post.CreatedAt.IsZero() {
		post.CreatedAt = post.CreatedAt.UTC()
	}
	post.Tags = uniqueTags(post.Tags)
	if post.Images == nil {
		post.Images = []string{}
	}
	// counters start at zero and only move with interaction rows
	post.LikeCount, post.CommentCount, post.SaveCount = 0, 0, 0

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		if len(post.Tags) == 0 {
			return nil
		}
		rows := make([]models.PostTag, 0, len(post.Tags))
		for _, tag := range post.Tags {
			rows = append(rows, models.PostTag{PostID: post.ID, Tag: tag})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to index post tags: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a single post with its author.
func (r *GORMPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, "posts.id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("post with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by ID %s: %w", id, err)
	}
	return &post, nil
}

// Query runs a filtered, ordered, offset-paginated post query.
func (r *GORMPostRepository) Query(ctx context.Context, filter PostFilter, order PostOrder, skip, take int) ([]models.Post, error) {
	if filter.AuthorIn != nil && len(filter.AuthorIn) == 0 {
		return []models.Post{}, nil
	}
	if skip < 0 {
		skip = 0
	}

	db := r.db.WithContext(ctx)
	q := db.Model(&models.Post{}).Preload("User")
	if filter.AuthorIn != nil {
		q = q.Where("posts.user_id IN ?", filter.AuthorIn)
	}
	if filter.ExcludeAuthor != "" {
		q = q.Where("posts.user_id <> ?", filter.ExcludeAuthor)
	}
	if filter.PublicOnly {
		q = q.Where("posts.is_public = ?", true)
	}
	if filter.CreatedAfter != nil {
		q = q.Where("posts.created_at >= ?", filter.CreatedAfter.UTC())
	}

	tagged := db.Model(&models.PostTag{}).Select("post_id").Where("tag IN ?", filter.TagsAny)
	switch {
	case len(filter.TagsAny) > 0 && len(filter.StylesAny) > 0:
		q = q.Where("(posts.id IN (?) OR posts.style IN ?)", tagged, filter.StylesAny)
	case len(filter.TagsAny) > 0:
		q = q.Where("posts.id IN (?)", tagged)
	case len(filter.StylesAny) > 0:
		q = q.Where("posts.style IN ?", filter.StylesAny)
	}

	switch order {
	case OrderEngagement:
		q = q.Order(ranking.TrendingOrderSQL())
	default:
		q = q.Order("posts.created_at DESC, posts.id DESC")
	}
	if take > 0 {
		q = q.Limit(take)
	}

	var posts []models.Post
	if err := q.Offset(skip).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	return posts, nil
}

// ListByAuthor returns the newest posts written by userID.
func (r *GORMPostRepository) ListByAuthor(ctx context.Context, userID string, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts by author %s: %w", userID, err)
	}
	return posts, nil
}

// ListLikedBy returns the posts userID liked, most recent like first.
func (r *GORMPostRepository) ListLikedBy(ctx context.Context, userID string, limit int) ([]models.Post, error) {
	return r.listInteracted(ctx, "likes", userID, limit)
}

// ListSavedBy returns the posts userID saved, most recent save first.
func (r *GORMPostRepository) ListSavedBy(ctx context.Context, userID string, limit int) ([]models.Post, error) {
	return r.listInteracted(ctx, "saves", userID, limit)
}

func (r *GORMPostRepository) listInteracted(ctx context.Context, table, userID string, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).
		Select("posts.*").
		Joins(fmt.Sprintf("JOIN %s ON %s.post_id = posts.id", table, table)).
		Where(table+".user_id = ?", userID).
		Order(table + ".created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s of user %s: %w", table, userID, err)
	}
	return posts, nil
}

func uniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
