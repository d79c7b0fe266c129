package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fitzty/internal/services"
	"fitzty/pkg/logger"
)

// ClosetHandler manages digital closets.
type ClosetHandler struct {
	base
	closet   *services.ClosetService
	analyzer *services.RecommendationService
}

// NewClosetHandler creates a new ClosetHandler.
func NewClosetHandler(closet *services.ClosetService, analyzer *services.RecommendationService, log *logger.Logger) *ClosetHandler {
	return &ClosetHandler{base: newBase(log), closet: closet, analyzer: analyzer}
}

// RegisterRoutes registers the closet routes.
func (h *ClosetHandler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/closet")
	group.Post("/", h.HandleAdd)
	group.Get("/", h.HandleList)
	group.Post("/analyze", h.HandleAnalyze)
}

// AddClosetItemRequest is the body of POST /closet.
type AddClosetItemRequest struct {
	UserID      string   `json:"userId"`
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description"`
	Image       string   `json:"image" validate:"required"`
	Category    string   `json:"category" validate:"required,max=64"`
	Brand       string   `json:"brand" validate:"max=100"`
	Color       string   `json:"color" validate:"max=64"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Tags        []string `json:"tags" validate:"max=30,dive,max=64"`
	IsPublic    bool     `json:"isPublic"`
}

// HandleAdd handles POST /closet.
func (h *ClosetHandler) HandleAdd(c *fiber.Ctx) error {
	var req AddClosetItemRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	item, progress, err := h.closet.Add(c.UserContext(), services.AddClosetItemInput{
		UserID:      actor(c, req.UserID),
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
		Brand:       req.Brand,
		Color:       req.Color,
		Price:       req.Price,
		Tags:        req.Tags,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item, "progress": progress})
}

// HandleList handles GET /closet?userId=&category=.
func (h *ClosetHandler) HandleList(c *fiber.Ctx) error {
	listing, err := h.closet.List(c.UserContext(), actor(c, c.Query("userId")), c.Query("category"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(listing)
}

// AnalyzeOutfitRequest is the body of POST /closet/analyze.
type AnalyzeOutfitRequest struct {
	ImageURL string `json:"imageUrl"`
}

// HandleAnalyze handles POST /closet/analyze.
func (h *ClosetHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req AnalyzeOutfitRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	analysis, err := h.analyzer.AnalyzeOutfit(c.UserContext(), req.ImageURL)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"analysis": analysis})
}
