package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"fitzty/internal/models"
	"fitzty/internal/progression"
	"fitzty/internal/repositories"
	"fitzty/pkg/apperr"
	"fitzty/pkg/logger"
)

// JoinResult is returned when a user joins a challenge.
type JoinResult struct {
	Entry    *models.ChallengeEntry `json:"entry"`
	Joined   bool                   `json:"joined"`
	Progress *ActivityResult        `json:"progress,omitempty"`
}

// CreateChallengeInput describes a new challenge. Nil bounds leave that side open.
type CreateChallengeInput struct {
	Slug        string
	Title       string
	Description string
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// ChallengeService lets users create, browse and join challenges.
type ChallengeService struct {
	users      repositories.UserRepository
	challenges repositories.ChallengeRepository
	activity   *ActivityService
	log        *logger.Logger
	now        Clock
}

// NewChallengeService creates a new ChallengeService.
func NewChallengeService(users repositories.UserRepository, challenges repositories.ChallengeRepository, activity *ActivityService, log *logger.Logger) *ChallengeService {
	if log == nil {
		log = logger.Nop()
	}
	return &ChallengeService{users: users, challenges: challenges, activity: activity, log: log, now: systemClock}
}

// WithClock replaces the time source.
func (s *ChallengeService) WithClock(c Clock) *ChallengeService {
	s.now = c
	return s
}

// Create stores a new challenge.
func (s *ChallengeService) Create(ctx context.Context, in CreateChallengeInput) (*models.Challenge, error) {
	challenge := &models.Challenge{
		Slug:        strings.ToLower(strings.TrimSpace(in.Slug)),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
	}
	if challenge.Slug == "" {
		return nil, apperr.Validation("slug is required")
	}
	if challenge.Title == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return nil, apperr.Validation("endsAt must not be before startsAt")
	}
	if err := s.challenges.Create(ctx, challenge); err != nil {
		if errors.Is(err, repositories.ErrDuplicateSlug) {
			return nil, apperr.Conflict("challenge slug '%s' already taken", challenge.Slug)
		}
		return nil, apperr.Internal(err)
	}
	return challenge, nil
}

// List returns challenges, only the currently open ones when openOnly is set.
func (s *ChallengeService) List(ctx context.Context, openOnly bool, limit int) ([]models.Challenge, error) {
	var openAt *time.Time
	if openOnly {
		now := s.now()
		openAt = &now
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	challenges, err := s.challenges.List(ctx, openAt, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return challenges, nil
}

// Join upserts the user's entry. Challenge XP is awarded on the first join only;
// rejoining just updates the entry. Joins outside the challenge window and posts
// the user did not write are rejected.
func (s *ChallengeService) Join(ctx context.Context, challengeID, userID string, postID *string) (*JoinResult, error) {
	if err := requireID("challengeId", challengeID); err != nil {
		return nil, err
	}
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	if postID != nil && *postID == "" {
		postID = nil
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, storeError(err, "User", userID)
	}

	entry, created, err := s.challenges.UpsertEntry(ctx, challengeID, userID, repositories.EntryFields{PostID: postID, At: s.now()})
	switch {
	case errors.Is(err, repositories.ErrChallengeClosed):
		return nil, apperr.Validation("challenge %s is not open", challengeID)
	case errors.Is(err, repositories.ErrPostNotOwned):
		return nil, apperr.Validation("post %s does not belong to user %s", *postID, userID)
	case err != nil:
		return nil, storeError(err, "Challenge", challengeID)
	}
	res := &JoinResult{Entry: entry, Joined: created}
	if created {
		progress, err := s.activity.Record(ctx, userID, progression.ActionChallenge)
		if err != nil {
			return nil, err
		}
		res.Progress = progress
	}
	return res, nil
}
