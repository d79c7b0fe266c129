package services

import (
	"context"
	"strings"

	"fitzty/internal/models"
	"fitzty/internal/progression"
	"fitzty/internal/repositories"
	"fitzty/pkg/apperr"
	"fitzty/pkg/logger"
)

// AddClosetItemInput is a new closet item.
type AddClosetItemInput struct {
	UserID      string
	Name        string
	Description string
	Image       string
	Category    string
	Brand       string
	Color       string
	Price       *float64
	Tags        []string
	IsPublic    bool
}

// ClosetListing is a user's closet, flat and grouped by category.
type ClosetListing struct {
	Items        []models.ClosetItem            `json:"items"`
	GroupedItems map[string][]models.ClosetItem `json:"groupedItems"`
	TotalItems   int                            `json:"totalItems"`
}

// ClosetService manages digital closets.
type ClosetService struct {
	users    repositories.UserRepository
	closet   repositories.ClosetRepository
	activity *ActivityService
	log      *logger.Logger
}

// NewClosetService creates a new ClosetService.
func NewClosetService(users repositories.UserRepository, closet repositories.ClosetRepository, activity *ActivityService, log *logger.Logger) *ClosetService {
	if log == nil {
		log = logger.Nop()
	}
	return &ClosetService{users: users, closet: closet, activity: activity, log: log}
}

// Add stores a closet item. Adding to the closet earns post XP.
func (s *ClosetService) Add(ctx context.Context, in AddClosetItemInput) (*models.ClosetItem, *ActivityResult, error) {
	if err := requireID("userId", in.UserID); err != nil {
		return nil, nil, err
	}
	for _, f := range [][2]string{{"name", in.Name}, {"image", in.Image}, {"category", in.Category}} {
		if strings.TrimSpace(f[1]) == "" {
			return nil, nil, apperr.Validation("%s is required", f[0])
		}
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, nil, apperr.Validation("price must not be negative")
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, nil, storeError(err, "User", in.UserID)
	}

	item := &models.ClosetItem{
		UserID:      in.UserID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Image:       in.Image,
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Brand:       in.Brand,
		Color:       in.Color,
		Price:       in.Price,
		Tags:        trimAll(in.Tags),
		IsPublic:    in.IsPublic,
	}
	if err := s.closet.Create(ctx, item); err != nil {
		return nil, nil, apperr.Internal(err)
	}
	progress, err := s.activity.Record(ctx, in.UserID, progression.ActionPost)
	if err != nil {
		return nil, nil, err
	}
	return item, progress, nil
}

// List returns the closet, optionally restricted to one category.
func (s *ClosetService) List(ctx context.Context, userID, category string) (*ClosetListing, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	items, err := s.closet.ListByUser(ctx, userID, strings.ToLower(strings.TrimSpace(category)))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	grouped := make(map[string][]models.ClosetItem)
	for _, it := range items {
		grouped[it.Category] = append(grouped[it.Category], it)
	}
	return &ClosetListing{Items: items, GroupedItems: grouped, TotalItems: len(items)}, nil
}
