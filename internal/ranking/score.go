// Package ranking holds the pure scoring and preference logic behind the feeds.
package ranking

import (
	"fmt"
	"sort"

	"fitzty/internal/models"
)

// Engagement weights. They are a fixed policy: every place that ranks by engagement
// goes through Score or ScoreSQL so orderings never diverge.
const (
	LikeWeight    = 1
	CommentWeight = 3
	SaveWeight    = 2
)

// Counters is the minimal view of a post the scorer needs.
type Counters struct {
	Likes    int
	Comments int
	Saves    int
}

// CountersOf extracts the engagement counters from a post.
func CountersOf(p *models.Post) Counters {
	return Counters{Likes: p.LikeCount, Comments: p.CommentCount, Saves: p.SaveCount}
}

// Score returns likes*1 + comments*3 + saves*2.
func Score(c Counters) int {
	return c.Likes*LikeWeight + c.Comments*CommentWeight + c.Saves*SaveWeight
}

// PostScore is Score applied to a post's counters.
func PostScore(p *models.Post) int {
	return Score(CountersOf(p))
}

// ScoreSQL renders the score as a SQL expression over the posts counter columns.
func ScoreSQL() string {
	return fmt.Sprintf("(like_count * %d + comment_count * %d + save_count * %d)",
		LikeWeight, CommentWeight, SaveWeight)
}

// TrendingOrderSQL is the ORDER BY clause matching TrendingLess.
func TrendingOrderSQL() string {
	return ScoreSQL() + " DESC, comment_count DESC, created_at DESC, id DESC"
}

// TrendingLess orders by score desc, then comment count desc, then newest first.
// The id comparison only makes the order total for identical posts.
func TrendingLess(a, b *models.Post) bool {
	sa, sb := PostScore(a), PostScore(b)
	if sa != sb {
		return sa > sb
	}
	if a.CommentCount != b.CommentCount {
		return a.CommentCount > b.CommentCount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// SortTrending sorts posts in place by TrendingLess.
func SortTrending(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool { return TrendingLess(&posts[i], &posts[j]) })
}
