package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fitzty/internal/metrics"
	"fitzty/internal/models"
	"fitzty/internal/ranking"
	"fitzty/internal/repositories"
	"fitzty/pkg/apperr"
	"fitzty/pkg/logger"
)

// FeedStrategy selects how a feed's candidate pool is built and ordered.
type FeedStrategy string

const (
	StrategyForYou   FeedStrategy = "for-you"
	StrategySocial   FeedStrategy = "social"
	StrategyTrending FeedStrategy = "trending"
)

// ParseStrategy accepts the public names (fyp, friends, trending) and the internal
// ones. Empty means for-you.
func ParseStrategy(raw string) (FeedStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "fyp", "for-you", "foryou":
		return StrategyForYou, nil
	case "friends", "social", "following":
		return StrategySocial, nil
	case "trending":
		return StrategyTrending, nil
	}
	return "", apperr.Validation("invalid feed type %q", raw)
}

// FeedConfig tunes feed selection.
type FeedConfig struct {
	DefaultLimit   int
	MaxLimit       int
	TrendingWindow time.Duration
	// ColdStartFallback serves trending when for-you has no affinity to match on.
	ColdStartFallback bool
	// HistoryLimit caps how many liked and saved posts feed the affinity set.
	HistoryLimit int
}

// DefaultFeedConfig mirrors the configuration defaults.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		DefaultLimit:      10,
		MaxLimit:          50,
		TrendingWindow:    7 * 24 * time.Hour,
		ColdStartFallback: true,
		HistoryLimit:      200,
	}
}

// FeedRequest is one page request. Page and Limit of zero take the defaults.
type FeedRequest struct {
	UserID   string
	Strategy FeedStrategy
	Page     int
	Limit    int
}

// FeedPage is an ordered page of annotated posts. HasMore is a heuristic: it is
// true whenever the page came back full, so the next page may be empty.
type FeedPage struct {
	Posts    []models.FeedPost `json:"posts"`
	HasMore  bool              `json:"hasMore"`
	NextPage int               `json:"nextPage"`
	Strategy FeedStrategy      `json:"strategy"`
}

// FeedService selects feed pages.
type FeedService struct {
	users        repositories.UserRepository
	posts        repositories.PostRepository
	follows      repositories.FollowRepository
	interactions repositories.InteractionRepository
	cfg          FeedConfig
	log          *logger.Logger
	now          Clock
}

// NewFeedService creates a new FeedService.
func NewFeedService(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	follows repositories.FollowRepository,
	interactions repositories.InteractionRepository,
	cfg FeedConfig,
	log *logger.Logger,
) *FeedService {
	def := DefaultFeedConfig()
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	if cfg.TrendingWindow <= 0 {
		cfg.TrendingWindow = def.TrendingWindow
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	if log == nil {
		log = logger.Nop()
	}
	return &FeedService{
		users:        users,
		posts:        posts,
		follows:      follows,
		interactions: interactions,
		cfg:          cfg,
		log:          log,
		now:          systemClock,
	}
}

// WithClock overrides the time source.
func (s *FeedService) WithClock(c Clock) *FeedService {
	s.now = c
	return s
}

// Select builds one feed page for the requester.
func (s *FeedService) Select(ctx context.Context, req FeedRequest) (*FeedPage, error) {
	start := time.Now()
	if err := requireID("userId", req.UserID); err != nil {
		return nil, err
	}
	if req.Strategy == "" {
		req.Strategy = StrategyForYou
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = s.cfg.DefaultLimit
	}
	if req.Page < 1 {
		return nil, apperr.Validation("page must be at least 1")
	}
	if req.Limit < 1 {
		return nil, apperr.Validation("limit must be at least 1")
	}
	if req.Limit > s.cfg.MaxLimit {
		req.Limit = s.cfg.MaxLimit
	}
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return nil, storeError(err, "User", req.UserID)
	}

	skip := (req.Page - 1) * req.Limit
	var (
		posts    []models.Post
		strategy = req.Strategy
		err      error
	)
	switch req.Strategy {
	case StrategySocial:
		posts, err = s.social(ctx, req.UserID, skip, req.Limit)
	case StrategyTrending:
		posts, err = s.trending(ctx, "", skip, req.Limit)
	case StrategyForYou:
		posts, strategy, err = s.forYou(ctx, req.UserID, skip, req.Limit)
	default:
		return nil, apperr.Validation("invalid feed type %q", req.Strategy)
	}
	if err != nil {
		return nil, storeError(err, "User", req.UserID)
	}

	annotated, err := s.annotate(ctx, req.UserID, posts)
	if err != nil {
		return nil, storeError(err, "User", req.UserID)
	}

	metrics.ObserveFeed(string(req.Strategy), string(strategy), time.Since(start))
	return &FeedPage{
		Posts:    annotated,
		HasMore:  len(annotated) == req.Limit,
		NextPage: req.Page + 1,
		Strategy: strategy,
	}, nil
}

func (s *FeedService) social(ctx context.Context, userID string, skip, take int) ([]models.Post, error) {
	followees, err := s.follows.ListFolloweeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if followees == nil {
		followees = []string{}
	}
	return s.posts.Query(ctx, repositories.PostFilter{
		AuthorIn:   followees,
		PublicOnly: true,
	}, repositories.OrderRecent, skip, take)
}

func (s *FeedService) trending(ctx context.Context, excludeAuthor string, skip, take int) ([]models.Post, error) {
	after := s.now().Add(-s.cfg.TrendingWindow)
	posts, err := s.posts.Query(ctx, repositories.PostFilter{
		ExcludeAuthor: excludeAuthor,
		PublicOnly:    true,
		CreatedAfter:  &after,
	}, repositories.OrderEngagement, skip, take)
	if err != nil {
		return nil, err
	}
	// same order as the store; keeps tie-breaks identical across drivers
	ranking.SortTrending(posts)
	return posts, nil
}

func (s *FeedService) forYou(ctx context.Context, userID string, skip, take int) ([]models.Post, FeedStrategy, error) {
	affinity, err := s.Affinity(ctx, userID)
	if err != nil {
		return nil, StrategyForYou, err
	}
	if affinity.Empty() {
		if !s.cfg.ColdStartFallback {
			return []models.Post{}, StrategyForYou, nil
		}
		s.log.Debug("for-you cold start, serving trending", "user_id", userID)
		posts, err := s.trending(ctx, userID, skip, take)
		return posts, StrategyTrending, err
	}
	posts, err := s.posts.Query(ctx, repositories.PostFilter{
		ExcludeAuthor: userID,
		PublicOnly:    true,
		TagsAny:       affinity.TagList(),
		StylesAny:     affinity.StyleList(),
	}, repositories.OrderRecent, skip, take)
	return posts, StrategyForYou, err
}

// Affinity loads the user's liked and saved posts and extracts their preferences.
func (s *FeedService) Affinity(ctx context.Context, userID string) (ranking.Affinity, error) {
	var history ranking.History
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		liked, err := s.posts.ListLikedBy(gctx, userID, s.cfg.HistoryLimit)
		history.Liked = liked
		return err
	})
	g.Go(func() error {
		saved, err := s.posts.ListSavedBy(gctx, userID, s.cfg.HistoryLimit)
		history.Saved = saved
		return err
	})
	if err := g.Wait(); err != nil {
		return ranking.Affinity{}, err
	}
	return ranking.Extract(history), nil
}

// annotate adds the viewer's like/save flags and the engagement score.
func (s *FeedService) annotate(ctx context.Context, viewerID string, posts []models.Post) ([]models.FeedPost, error) {
	out := make([]models.FeedPost, len(posts))
	if len(posts) == 0 {
		return out, nil
	}
	postIDs := make([]string, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID
	}

	var liked, saved map[string]bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		liked, err = s.interactions.LikedPostIDs(gctx, viewerID, postIDs)
		return err
	})
	g.Go(func() error {
		var err error
		saved, err = s.interactions.SavedPostIDs(gctx, viewerID, postIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range posts {
		out[i] = models.FeedPost{
			Post:            posts[i],
			EngagementScore: ranking.PostScore(&posts[i]),
			IsLiked:         liked[posts[i].ID],
			IsSaved:         saved[posts[i].ID],
		}
	}
	return out, nil
}
