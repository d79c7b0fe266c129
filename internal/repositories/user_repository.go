package repositories

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"fitzty/internal/models"
	"fitzty/internal/progression"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// IncrementXP atomically adds delta (clamped so xp never drops below 0) and
	// returns the stored value.
	IncrementXP(ctx context.Context, id string, delta int) (int, error)
	// ApplyActivity increments XP, advances the streak and stamps last activity
	// in one transaction.
	ApplyActivity(ctx context.Context, update ActivityUpdate) (*models.User, error)
	UpdateAvatarConfig(ctx context.Context, id string, config datatypes.JSON) error
	UpdateStyleSignature(ctx context.Context, id, signature string) error
}

// ActivityUpdate is one qualifying activity by the user themselves.
type ActivityUpdate struct {
	UserID  string
	XPDelta int
	Now     time.Time
	Streak  progression.StreakPolicy
}
