// Package progression turns user activity into experience points, levels, streaks
// and avatar unlocks. Everything here is pure; persistence lives in the repositories.
package progression

import (
	"fmt"
	"strings"
	"time"
)

// Action is a qualifying user activity.
type Action string

const (
	ActionPost      Action = "post"
	ActionUpvote    Action = "upvote"
	ActionStreak    Action = "streak"
	ActionChallenge Action = "challenge"
	ActionComment   Action = "comment"
)

var xpTable = map[Action]int{
	ActionPost:      20,
	ActionUpvote:    5,
	ActionStreak:    10,
	ActionChallenge: 50,
	ActionComment:   3,
}

// XPPerLevel is the width of one level band.
const XPPerLevel = 100

// ParseAction validates a raw action name.
func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := xpTable[a]; !ok {
		return "", fmt.Errorf("unknown action %q", raw)
	}
	return a, nil
}

// XPFor returns the XP awarded for an action. Unknown actions award nothing.
func XPFor(a Action) int {
	return xpTable[a]
}

// LevelFor is floor(xp/100)+1. Negative xp is treated as zero, so the level is at least 1.
func LevelFor(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// DaysBetween counts calendar days from last to today, using today's location for both.
// It is negative when last is after today.
func DaysBetween(last, today time.Time) int {
	last = last.In(today.Location())
	ly, lm, ld := last.Date()
	ty, tm, td := today.Date()
	l := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(l).Hours() / 24)
}

// StreakDelta is 1 when today is exactly the calendar day after last, otherwise 0.
// Zero means no streak credit; it does not mean the streak was broken.
func StreakDelta(last, today time.Time) int {
	if DaysBetween(last, today) == 1 {
		return 1
	}
	return 0
}

// StreakPolicy decides what a missed day does to a stored streak.
type StreakPolicy struct {
	ResetOnMiss bool
}

// Advance folds one activity at now into the stored streak. A first ever activity
// earns no credit. Gaps of more than a day stall the streak unless ResetOnMiss is set.
func (p StreakPolicy) Advance(last *time.Time, streak int, now time.Time) int {
	if streak < 0 {
		streak = 0
	}
	if last == nil {
		return streak
	}
	if StreakDelta(*last, now) == 1 {
		return streak + 1
	}
	if p.ResetOnMiss && DaysBetween(*last, now) > 1 {
		return 0
	}
	return streak
}
