package services

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"fitzty/internal/metrics"
	"fitzty/internal/models"
	"fitzty/internal/repositories"
	"fitzty/pkg/apperr"
	"fitzty/pkg/llm"
	"fitzty/pkg/logger"
	"fitzty/pkg/rabbitmq"
)

// RecommendationConfig bounds the generator's outbound calls.
type RecommendationConfig struct {
	Timeout time.Duration
	// HistoryLimit caps each behavior source in the summary.
	HistoryLimit int
	// ListLimit is the page size of ListRecommendations.
	ListLimit int
}

// GenerateResult is always well formed, even when generation failed.
type GenerateResult struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	StyleDNA        string                  `json:"styleDNA"`
}

// RecommendationService generates, stores and lists recommendations.
type RecommendationService struct {
	users  repositories.UserRepository
	posts  repositories.PostRepository
	closet repositories.ClosetRepository
	recs   repositories.RecommendationRepository
	llm    llm.Client
	cfg    RecommendationConfig
	events EventPublisher
	log    *logger.Logger
	now    Clock
}

// NewRecommendationService creates a new RecommendationService. The llm client is
// injected so tests and deployments without a provider can substitute it.
func NewRecommendationService(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	closet repositories.ClosetRepository,
	recs repositories.RecommendationRepository,
	client llm.Client,
	cfg RecommendationConfig,
	events EventPublisher,
	log *logger.Logger,
) *RecommendationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 10
	}
	if client == nil {
		client = llm.Disabled{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RecommendationService{
		users:  users,
		posts:  posts,
		closet: closet,
		recs:   recs,
		llm:    client,
		cfg:    cfg,
		events: events,
		log:    log,
		now:    systemClock,
	}
}

// WithClock overrides the time source.
func (s *RecommendationService) WithClock(c Clock) *RecommendationService {
	s.now = c
	return s
}

// Summarize collects the user's posts, likes, saves and closet items.
func (s *RecommendationService) Summarize(ctx context.Context, userID string) (BehaviorSummary, error) {
	var summary BehaviorSummary
	limit := s.cfg.HistoryLimit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		posts, err := s.posts.ListByAuthor(gctx, userID, limit)
		summary.Posts = behaviorFromPosts(posts)
		return err
	})
	g.Go(func() error {
		liked, err := s.posts.ListLikedBy(gctx, userID, limit)
		summary.Likes = behaviorFromPosts(liked)
		return err
	})
	g.Go(func() error {
		saved, err := s.posts.ListSavedBy(gctx, userID, limit)
		summary.Saves = behaviorFromPosts(saved)
		return err
	})
	g.Go(func() error {
		items, err := s.closet.ListByUser(gctx, userID, "")
		if len(items) > limit {
			items = items[:limit]
		}
		summary.Closet = behaviorFromCloset(items)
		return err
	})
	if err := g.Wait(); err != nil {
		return BehaviorSummary{}, err
	}
	return summary, nil
}

// Generate asks the language model for recommendations and a style signature.
// Model failures never surface: they become an empty list and the default
// signature. Only store failures are returned.
func (s *RecommendationService) Generate(ctx context.Context, userID string) (*GenerateResult, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, storeError(err, "User", userID)
	}
	summary, err := s.Summarize(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var (
		drafts   []RecommendationDraft
		draftsOK bool
		sig      string
		sigOK    bool
		g        errgroup.Group
	)
	// neither call returns an error, so one failing never cancels the other
	g.Go(func() error {
		drafts, draftsOK = s.recommend(ctx, summary)
		return nil
	})
	g.Go(func() error {
		sig, sigOK = s.signature(ctx, summary)
		return nil
	})
	_ = g.Wait()
	signature := sig
	fellBack := !draftsOK || !sigOK

	now := s.now()
	rows := make([]models.Recommendation, 0, len(drafts))
	for _, d := range drafts {
		content, err := json.Marshal(models.RecommendationContent{
			Title:       d.Title,
			Description: d.Description,
			Tags:        d.Tags,
			Reasoning:   d.Reasoning,
		})
		if err != nil {
			return nil, apperr.Internal(err)
		}
		rows = append(rows, models.Recommendation{
			UserID:    userID,
			Type:      d.Type,
			Content:   datatypes.JSON(content),
			Score:     clampUnit(d.Confidence),
			CreatedAt: now,
		})
	}
	if err := s.recs.CreateBatch(ctx, rows); err != nil {
		return nil, apperr.Internal(err)
	}
	metrics.RecommendationsGeneratedTotal.Add(float64(len(rows)))

	// a fallback signature never replaces a generated one
	if sigOK {
		if err := s.users.UpdateStyleSignature(ctx, userID, signature); err != nil {
			s.log.Warn("failed to store style signature", "user_id", userID, "error", err)
		}
	}

	publish(s.events, s.log, rabbitmq.RoutingRecommendationsGenerated, RecommendationsEvent{
		UserID:     userID,
		Count:      len(rows),
		StyleDNA:   signature,
		Fallback:   fellBack,
		OccurredAt: now,
	})
	return &GenerateResult{Recommendations: rows, StyleDNA: signature}, nil
}

// recommend returns the parsed drafts and false when the fallback was used.
func (s *RecommendationService) recommend(ctx context.Context, summary BehaviorSummary) ([]RecommendationDraft, bool) {
	prompt, err := recommendPrompt(summary)
	if err != nil {
		return s.fallbackRecommendations("prompt", err), false
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	raw, err := s.llm.Complete(ctx, llm.CompletionRequest{
		System:      recommendSystemPrompt,
		User:        prompt,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return s.fallbackRecommendations(failureReason(err), err), false
	}
	drafts := ParseRecommendations(raw)
	if drafts == nil {
		return s.fallbackRecommendations("malformed", errors.New("response is not a JSON array")), false
	}
	return drafts, true
}

// signature returns the style signature and false when the default was used.
func (s *RecommendationService) signature(ctx context.Context, summary BehaviorSummary) (string, bool) {
	prompt, err := signaturePrompt(summary)
	if err != nil {
		return s.fallbackSignature("prompt", err), false
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	raw, err := s.llm.Complete(ctx, llm.CompletionRequest{
		System:      signatureSystemPrompt,
		User:        prompt,
		Temperature: 0.5,
		MaxTokens:   100,
	})
	if err != nil {
		return s.fallbackSignature(failureReason(err), err), false
	}
	sig, ok := ParseStyleSignature(raw)
	if !ok {
		return s.fallbackSignature("malformed", errors.New("signature does not have 3 to 5 elements")), false
	}
	return sig, true
}

func (s *RecommendationService) fallbackRecommendations(reason string, err error) []RecommendationDraft {
	metrics.RecommendationFallbacksTotal.WithLabelValues("recommendations", reason).Inc()
	s.log.Warn("recommendation generation failed, using fallback", "reason", reason, "error", err)
	return []RecommendationDraft{}
}

func (s *RecommendationService) fallbackSignature(reason string, err error) string {
	metrics.RecommendationFallbacksTotal.WithLabelValues("signature", reason).Inc()
	s.log.Warn("style signature generation failed, using default", "reason", reason, "error", err)
	return DefaultStyleSignature
}

func failureReason(err error) string {
	var httpErr *llm.HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, llm.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, llm.ErrEmptyResponse):
		return "empty"
	case errors.As(err, &httpErr):
		return "provider_error"
	}
	return "error"
}

// List returns the newest recommendations, optionally of one type.
func (s *RecommendationService) List(ctx context.Context, userID, typ string) ([]models.Recommendation, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	t := models.RecommendationType(typ)
	if typ != "" && !t.Valid() {
		return nil, apperr.Validation("invalid recommendation type %q", typ)
	}
	recs, err := s.recs.ListByUser(ctx, userID, t, s.cfg.ListLimit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return recs, nil
}

// MarkRead flags one of the user's recommendations as read.
func (s *RecommendationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := requireID("userId", userID); err != nil {
		return err
	}
	return storeError(s.recs.MarkRead(ctx, id, userID), "Recommendation", id)
}
