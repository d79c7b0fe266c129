package services

import (
	"context"

	"fitzty/internal/metrics"
	"fitzty/internal/progression"
	"fitzty/internal/repositories"
	"fitzty/pkg/apperr"
	"fitzty/pkg/logger"
	"fitzty/pkg/rabbitmq"
)

// ActivityResult is the progression state after an award.
type ActivityResult struct {
	XP        int      `json:"xp"`
	Level     int      `json:"level"`
	Streak    int      `json:"streak"`
	XPAwarded int      `json:"xpAwarded"`
	Unlocked  []string `json:"unlocked"`
}

// ActivityService applies XP, streak and unlock effects of user activity.
type ActivityService struct {
	users   repositories.UserRepository
	avatars repositories.AvatarItemRepository
	policy  progression.StreakPolicy
	events  EventPublisher
	log     *logger.Logger
	now     Clock
}

// NewActivityService creates a new ActivityService.
func NewActivityService(users repositories.UserRepository, avatars repositories.AvatarItemRepository, policy progression.StreakPolicy, events EventPublisher, log *logger.Logger) *ActivityService {
	if log == nil {
		log = logger.Nop()
	}
	return &ActivityService{
		users:   users,
		avatars: avatars,
		policy:  policy,
		events:  events,
		log:     log,
		now:     systemClock,
	}
}

// WithClock overrides the time source.
func (s *ActivityService) WithClock(c Clock) *ActivityService {
	s.now = c
	return s
}

// RecordRaw validates a raw action name and records it.
func (s *ActivityService) RecordRaw(ctx context.Context, userID, action string) (*ActivityResult, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	if action == "" {
		return nil, apperr.Validation("action is required")
	}
	a, err := progression.ParseAction(action)
	if err != nil {
		return nil, apperr.Validation("invalid action %q", action)
	}
	return s.Record(ctx, userID, a)
}

// Record is an activity performed by userID: XP, streak and last activity move together.
func (s *ActivityService) Record(ctx context.Context, userID string, action progression.Action) (*ActivityResult, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	delta := progression.XPFor(action)
	user, err := s.users.ApplyActivity(ctx, repositories.ActivityUpdate{
		UserID:  userID,
		XPDelta: delta,
		Now:     s.now(),
		Streak:  s.policy,
	})
	if err != nil {
		return nil, storeError(err, "User", userID)
	}
	return s.finish(ctx, userID, action, delta, user.XP, user.Streak), nil
}

// Award credits XP earned by someone else's action, such as an upvote on the
// user's post. The recipient's streak is left alone.
func (s *ActivityService) Award(ctx context.Context, userID string, action progression.Action) (*ActivityResult, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	delta := progression.XPFor(action)
	xp, err := s.users.IncrementXP(ctx, userID, delta)
	if err != nil {
		return nil, storeError(err, "User", userID)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User", userID)
	}
	return s.finish(ctx, userID, action, delta, xp, user.Streak), nil
}

func (s *ActivityService) finish(ctx context.Context, userID string, action progression.Action, delta, xp, streak int) *ActivityResult {
	oldXP := xp - delta
	if oldXP < 0 {
		oldXP = 0
	}
	newly := progression.NewlyUnlocked(oldXP, xp)

	// granting is idempotent, so everything reachable is (re)granted, not just the new band
	if s.avatars != nil {
		granted, err := s.avatars.GrantUnlocks(ctx, userID, progression.UnlocksFor(xp))
		if err != nil {
			s.log.Error("failed to grant unlocks", "user_id", userID, "xp", xp, "error", err)
		} else if granted > 0 {
			metrics.UnlocksGrantedTotal.Add(float64(granted))
		}
	}
	metrics.AddXP(string(action), delta)

	res := &ActivityResult{
		XP:        xp,
		Level:     progression.LevelFor(xp),
		Streak:    streak,
		XPAwarded: delta,
		Unlocked:  progression.Names(newly),
	}
	s.log.Debug("activity recorded", "user_id", userID, "action", string(action), "xp", xp, "level", res.Level)
	publish(s.events, s.log, rabbitmq.RoutingActivityRecorded, ActivityEvent{
		UserID:     userID,
		Action:     string(action),
		XPAwarded:  delta,
		XP:         xp,
		Level:      res.Level,
		Streak:     streak,
		Unlocked:   res.Unlocked,
		OccurredAt: s.now(),
	})
	return res
}
