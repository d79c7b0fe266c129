package repositories

import (
	"context"
	"time"

	"fitzty/internal/models"
)

// PostFilter enumerates every supported post predicate. Zero values impose no
// constraint, except AuthorIn: a non-nil empty slice matches nothing.
// TagsAny and StylesAny form a single OR group.
type PostFilter struct {
	AuthorIn      []string
	ExcludeAuthor string
	PublicOnly    bool
	TagsAny       []string
	StylesAny     []string
	CreatedAfter  *time.Time
}

// PostOrder selects the ordering of a post query.
type PostOrder int

const (
	// OrderRecent is newest first.
	OrderRecent PostOrder = iota
	// OrderEngagement is engagement score desc, comments desc, newest first.
	OrderEngagement
)

func (o PostOrder) String() string {
	if o == OrderEngagement {
		return "engagement"
	}
	return "recent"
}

// PostRepository defines the interface for post data access.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Query(ctx context.Context, filter PostFilter, order PostOrder, skip, take int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, userID string, limit int) ([]models.Post, error)
	ListLikedBy(ctx context.Context, userID string, limit int) ([]models.Post, error)
	ListSavedBy(ctx context.Context, userID string, limit int) ([]models.Post, error)
}
