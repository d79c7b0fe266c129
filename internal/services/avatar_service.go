package services

import (
	"context"
	"strings"

	json "github.com/goccy/go-json"
	"gorm.io/datatypes"

	"fitzty/internal/models"
	"fitzty/internal/progression"
	"fitzty/internal/repositories"
	"fitzty/pkg/apperr"
	"fitzty/pkg/logger"
)

// UnlockState is the progression view used by the avatar editor.
type UnlockState struct {
	AvailableUnlocks []string `json:"availableUnlocks"`
	Level            int      `json:"level"`
	XP               int      `json:"xp"`
}

// AvatarState is a user's full avatar.
type AvatarState struct {
	AvatarConfig datatypes.JSON      `json:"avatarConfig"`
	AvatarItems  []models.AvatarItem `json:"avatarItems"`
	UnlockState
}

// EquipItemInput claims or refreshes an avatar item.
type EquipItemInput struct {
	UserID    string
	ItemType  string
	ItemName  string
	ItemImage string
}

// AvatarService reads and edits avatars.
type AvatarService struct {
	users   repositories.UserRepository
	avatars repositories.AvatarItemRepository
	log     *logger.Logger
}

// NewAvatarService creates a new AvatarService.
func NewAvatarService(users repositories.UserRepository, avatars repositories.AvatarItemRepository, log *logger.Logger) *AvatarService {
	if log == nil {
		log = logger.Nop()
	}
	return &AvatarService{users: users, avatars: avatars, log: log}
}

// Unlocks resolves the unlocks reachable with the user's XP together with any
// catalog item already owned, in catalog order.
func (s *AvatarService) Unlocks(ctx context.Context, userID string) (*UnlockState, error) {
	user, items, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	state := unlockState(user, items)
	return &state, nil
}

// Get returns the avatar config, owned items and unlock state.
func (s *AvatarService) Get(ctx context.Context, userID string) (*AvatarState, error) {
	user, items, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	cfg := user.AvatarConfig
	if len(cfg) == 0 {
		cfg = datatypes.JSON("{}")
	}
	return &AvatarState{AvatarConfig: cfg, AvatarItems: items, UnlockState: unlockState(user, items)}, nil
}

// UpdateConfig replaces the avatar configuration, which must be a JSON object.
func (s *AvatarService) UpdateConfig(ctx context.Context, userID string, config json.RawMessage) (datatypes.JSON, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	var obj map[string]any
	if len(config) == 0 || json.Unmarshal(config, &obj) != nil || obj == nil {
		return nil, apperr.Validation("avatarConfig must be a JSON object")
	}
	if err := s.users.UpdateAvatarConfig(ctx, userID, datatypes.JSON(config)); err != nil {
		return nil, storeError(err, "User", userID)
	}
	return datatypes.JSON(config), nil
}

// EquipItem upserts an avatar item. Catalog unlocks can only be claimed once the
// user's XP reaches their threshold.
func (s *AvatarService) EquipItem(ctx context.Context, in EquipItemInput) (*models.AvatarItem, error) {
	if err := requireID("userId", in.UserID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.ItemName)
	itemType := strings.TrimSpace(in.ItemType)
	if name == "" || itemType == "" {
		return nil, apperr.Validation("itemType and itemName are required")
	}
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, storeError(err, "User", in.UserID)
	}
	if u, ok := progression.LookupUnlock(name); ok {
		if user.XP < u.Threshold {
			return nil, apperr.Validation("%s unlocks at %d XP", u.String(), u.Threshold)
		}
		name, itemType = u.String(), u.ItemType()
	}

	item := &models.AvatarItem{
		UserID:     in.UserID,
		ItemType:   itemType,
		ItemName:   name,
		ItemImage:  in.ItemImage,
		IsUnlocked: true,
	}
	if err := s.avatars.Upsert(ctx, item); err != nil {
		return nil, apperr.Internal(err)
	}
	return item, nil
}

func (s *AvatarService) load(ctx context.Context, userID string) (*models.User, []models.AvatarItem, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, storeError(err, "User", userID)
	}
	items, err := s.avatars.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	return user, items, nil
}

func unlockState(user *models.User, items []models.AvatarItem) UnlockState {
	owned := make(map[string]bool, len(items))
	for _, it := range items {
		if it.IsUnlocked {
			owned[it.ItemName] = true
		}
	}
	available := []string{}
	for _, u := range progression.Catalog() {
		if u.Threshold <= user.XP || owned[u.String()] {
			available = append(available, u.String())
		}
	}
	return UnlockState{
		AvailableUnlocks: available,
		Level:            progression.LevelFor(user.XP),
		XP:               user.XP,
	}
}
