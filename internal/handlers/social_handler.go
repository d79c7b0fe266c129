package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fitzty/internal/services"
	"fitzty/pkg/logger"
)

// SocialHandler maintains follow relations.
type SocialHandler struct {
	base
	social *services.SocialService
}

// NewSocialHandler creates a new SocialHandler.
func NewSocialHandler(social *services.SocialService, log *logger.Logger) *SocialHandler {
	return &SocialHandler{base: newBase(log), social: social}
}

// RegisterRoutes registers the relation routes.
func (h *SocialHandler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/relations")
	group.Post("/follow", h.HandleFollow)
	group.Post("/unfollow", h.HandleUnfollow)
	group.Get("/following", h.HandleFollowing)
	group.Get("/followers", h.HandleFollowers)
}

// RelationRequest is the body of follow and unfollow.
type RelationRequest struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId" validate:"required"`
}

// HandleFollow handles POST /relations/follow.
func (h *SocialHandler) HandleFollow(c *fiber.Ctx) error {
	var req RelationRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	created, err := h.social.Follow(c.UserContext(), actor(c, req.FromUserID), req.ToUserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "created": created})
}

// HandleUnfollow handles POST /relations/unfollow.
func (h *SocialHandler) HandleUnfollow(c *fiber.Ctx) error {
	var req RelationRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	removed, err := h.social.Unfollow(c.UserContext(), actor(c, req.FromUserID), req.ToUserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "removed": removed})
}

// HandleFollowing handles GET /relations/following?userId=.
func (h *SocialHandler) HandleFollowing(c *fiber.Ctx) error {
	ids, err := h.social.Following(c.UserContext(), actor(c, c.Query("userId")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"userIds": ids})
}

// HandleFollowers handles GET /relations/followers?userId=.
func (h *SocialHandler) HandleFollowers(c *fiber.Ctx) error {
	ids, err := h.social.Followers(c.UserContext(), actor(c, c.Query("userId")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"userIds": ids})
}
