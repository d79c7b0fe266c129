package services

import (
	"context"
	"strings"

	"fitzty/internal/models"
	"fitzty/internal/progression"
	"fitzty/internal/repositories"
	"fitzty/pkg/apperr"
	"fitzty/pkg/logger"
	"fitzty/pkg/rabbitmq"
)

// CreatePostInput is a new post. IsPublic defaults to true.
type CreatePostInput struct {
	UserID      string
	Content     string
	Images      []string
	AvatarImage string
	Tags        []string
	Style       string
	Brand       string
	Color       string
	Price       string
	IsPublic    *bool
}

// ToggleOutcome is returned by like and save toggles.
type ToggleOutcome struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}

// PostService creates posts and handles likes, saves and comments. Every write
// that earns XP goes through the activity service.
type PostService struct {
	users        repositories.UserRepository
	posts        repositories.PostRepository
	interactions repositories.InteractionRepository
	activity     *ActivityService
	events       EventPublisher
	log          *logger.Logger
	now          Clock
}

// NewPostService creates a new PostService.
func NewPostService(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	interactions repositories.InteractionRepository,
	activity *ActivityService,
	events EventPublisher,
	log *logger.Logger,
) *PostService {
	if log == nil {
		log = logger.Nop()
	}
	return &PostService{
		users:        users,
		posts:        posts,
		interactions: interactions,
		activity:     activity,
		events:       events,
		log:          log,
		now:          systemClock,
	}
}

// WithClock overrides the time source.
func (s *PostService) WithClock(c Clock) *PostService {
	s.now = c
	return s
}

// Create stores a post and awards post XP to its author.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, *ActivityResult, error) {
	if err := requireID("userId", in.UserID); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(in.Content) == "" && len(in.Images) == 0 {
		return nil, nil, apperr.Validation("content or images are required")
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, nil, storeError(err, "User", in.UserID)
	}

	public := true
	if in.IsPublic != nil {
		public = *in.IsPublic
	}
	post := &models.Post{
		UserID:      in.UserID,
		Content:     strings.TrimSpace(in.Content),
		Images:      in.Images,
		AvatarImage: in.AvatarImage,
		Tags:        trimAll(in.Tags),
		Style:       strings.TrimSpace(in.Style),
		Brand:       strings.TrimSpace(in.Brand),
		Color:       strings.TrimSpace(in.Color),
		Price:       strings.TrimSpace(in.Price),
		IsPublic:    public,
		CreatedAt:   s.now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, nil, apperr.Internal(err)
	}

	progress, err := s.activity.Record(ctx, in.UserID, progression.ActionPost)
	if err != nil {
		return nil, nil, err
	}
	return post, progress, nil
}

// ToggleLike likes or unlikes a post. Creating a like credits upvote XP to the
// post's author; removing it takes nothing back.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (*ToggleOutcome, error) {
	res, err := s.toggle(ctx, "like", userID, postID, s.interactions.ToggleLike)
	if err != nil {
		return nil, err
	}
	if res.Created && res.AuthorID != userID {
		if _, err := s.activity.Award(ctx, res.AuthorID, progression.ActionUpvote); err != nil {
			s.log.Error("failed to award upvote xp", "author_id", res.AuthorID, "post_id", postID, "error", err)
		}
	}
	return &ToggleOutcome{Active: res.Active, Count: res.Count}, nil
}

// ToggleSave saves or unsaves a post.
func (s *PostService) ToggleSave(ctx context.Context, userID, postID string) (*ToggleOutcome, error) {
	res, err := s.toggle(ctx, "save", userID, postID, s.interactions.ToggleSave)
	if err != nil {
		return nil, err
	}
	return &ToggleOutcome{Active: res.Active, Count: res.Count}, nil
}

type toggleFunc func(ctx context.Context, userID, postID string) (repositories.ToggleResult, error)

func (s *PostService) toggle(ctx context.Context, kind, userID, postID string, fn toggleFunc) (repositories.ToggleResult, error) {
	if err := requireID("userId", userID); err != nil {
		return repositories.ToggleResult{}, err
	}
	if err := requireID("postId", postID); err != nil {
		return repositories.ToggleResult{}, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return repositories.ToggleResult{}, storeError(err, "User", userID)
	}
	res, err := fn(ctx, userID, postID)
	if err != nil {
		return repositories.ToggleResult{}, storeError(err, "Post", postID)
	}
	publish(s.events, s.log, rabbitmq.RoutingInteractionToggled, InteractionEvent{
		UserID:     userID,
		PostID:     postID,
		Kind:       kind,
		Active:     res.Active,
		Count:      res.Count,
		OccurredAt: s.now(),
	})
	return res, nil
}

// Comment adds a comment and awards comment XP to its writer.
func (s *PostService) Comment(ctx context.Context, userID, postID, content string) (*models.Comment, *ActivityResult, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, nil, err
	}
	if err := requireID("postId", postID); err != nil {
		return nil, nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, apperr.Validation("content is required")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, nil, storeError(err, "User", userID)
	}

	comment := &models.Comment{UserID: userID, PostID: postID, Content: content, CreatedAt: s.now()}
	if err := s.interactions.AddComment(ctx, comment); err != nil {
		return nil, nil, storeError(err, "Post", postID)
	}
	progress, err := s.activity.Record(ctx, userID, progression.ActionComment)
	if err != nil {
		return nil, nil, err
	}
	return comment, progress, nil
}

// DeleteComment removes the user's own comment.
func (s *PostService) DeleteComment(ctx context.Context, userID, postID, commentID string) error {
	if err := requireID("userId", userID); err != nil {
		return err
	}
	if err := requireID("commentId", commentID); err != nil {
		return err
	}
	return storeError(s.interactions.DeleteComment(ctx, postID, commentID, userID), "Comment", commentID)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
