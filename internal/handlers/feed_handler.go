package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fitzty/internal/services"
	"fitzty/pkg/logger"
)

// FeedHandler serves feed pages.
type FeedHandler struct {
	base
	feed *services.FeedService
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feed *services.FeedService, log *logger.Logger) *FeedHandler {
	return &FeedHandler{base: newBase(log), feed: feed}
}

// RegisterRoutes registers the feed routes.
func (h *FeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/feed", h.HandleFeed)
}

// HandleFeed handles GET /feed?userId=&type=&page=&limit=.
func (h *FeedHandler) HandleFeed(c *fiber.Ctx) error {
	strategy, err := services.ParseStrategy(c.Query("type"))
	if err != nil {
		return h.fail(c, err)
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return h.fail(c, err)
	}
	limit, err := queryInt(c, "limit", 1)
	if err != nil {
		return h.fail(c, err)
	}

	result, err := h.feed.Select(c.UserContext(), services.FeedRequest{
		UserID:   actor(c, c.Query("userId")),
		Strategy: strategy,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}
