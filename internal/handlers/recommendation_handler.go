package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fitzty/internal/services"
	"fitzty/pkg/logger"
)

// RecommendationHandler generates and lists recommendations.
type RecommendationHandler struct {
	base
	recs *services.RecommendationService
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recs *services.RecommendationService, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{base: newBase(log), recs: recs}
}

// RegisterRoutes registers the recommendation routes.
func (h *RecommendationHandler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/recommendations")
	group.Post("/", h.HandleGenerate)
	group.Get("/", h.HandleList)
	group.Patch("/:id/read", h.HandleMarkRead)
}

// UserRequest is a body carrying only the acting user.
type UserRequest struct {
	UserID string `json:"userId"`
}

// HandleGenerate handles POST /recommendations. The model's failures never turn
// into an error response; only store failures do.
func (h *RecommendationHandler) HandleGenerate(c *fiber.Ctx) error {
	var req UserRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	result, err := h.recs.Generate(c.UserContext(), actor(c, req.UserID))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

// HandleList handles GET /recommendations?userId=&type=.
func (h *RecommendationHandler) HandleList(c *fiber.Ctx) error {
	recs, err := h.recs.List(c.UserContext(), actor(c, c.Query("userId")), c.Query("type"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"recommendations": recs})
}

// HandleMarkRead handles PATCH /recommendations/:id/read.
func (h *RecommendationHandler) HandleMarkRead(c *fiber.Ctx) error {
	var req UserRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.recs.MarkRead(c.UserContext(), c.Params("id"), actor(c, req.UserID)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
