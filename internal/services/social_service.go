package services

import (
	"context"

	"fitzty/internal/repositories"
	"fitzty/pkg/apperr"
	"fitzty/pkg/logger"
)

// SocialService maintains the follow graph.
type SocialService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	log     *logger.Logger
}

// NewSocialService creates a new SocialService.
func NewSocialService(users repositories.UserRepository, follows repositories.FollowRepository, log *logger.Logger) *SocialService {
	if log == nil {
		log = logger.Nop()
	}
	return &SocialService{users: users, follows: follows, log: log}
}

// Follow makes fromID follow toID. Following twice is not an error.
func (s *SocialService) Follow(ctx context.Context, fromID, toID string) (bool, error) {
	if err := s.validatePair(ctx, fromID, toID); err != nil {
		return false, err
	}
	created, err := s.follows.Create(ctx, fromID, toID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return created, nil
}

// Unfollow removes the edge if it exists.
func (s *SocialService) Unfollow(ctx context.Context, fromID, toID string) (bool, error) {
	if err := requireID("fromUserId", fromID); err != nil {
		return false, err
	}
	if err := requireID("toUserId", toID); err != nil {
		return false, err
	}
	removed, err := s.follows.Delete(ctx, fromID, toID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return removed, nil
}

// Following lists the ids fromID follows.
func (s *SocialService) Following(ctx context.Context, userID string) ([]string, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	ids, err := s.follows.ListFolloweeIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return ids, nil
}

// Followers lists the ids following userID.
func (s *SocialService) Followers(ctx context.Context, userID string) ([]string, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	ids, err := s.follows.ListFollowerIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return ids, nil
}

func (s *SocialService) validatePair(ctx context.Context, fromID, toID string) error {
	if err := requireID("fromUserId", fromID); err != nil {
		return err
	}
	if err := requireID("toUserId", toID); err != nil {
		return err
	}
	if fromID == toID {
		return apperr.Validation("users cannot follow themselves")
	}
	for _, id := range []string{fromID, toID} {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			return storeError(err, "User", id)
		}
	}
	return nil
}
