package handlers

import (
	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"fitzty/internal/services"
	"fitzty/pkg/logger"
)

// AvatarHandler serves avatar state and edits.
type AvatarHandler struct {
	base
	avatar *services.AvatarService
}

// NewAvatarHandler creates a new AvatarHandler.
func NewAvatarHandler(avatar *services.AvatarService, log *logger.Logger) *AvatarHandler {
	return &AvatarHandler{base: newBase(log), avatar: avatar}
}

// RegisterRoutes registers the avatar routes.
func (h *AvatarHandler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/avatar")
	group.Get("/unlocks", h.HandleUnlocks)
	group.Get("/", h.HandleGet)
	group.Post("/", h.HandleUpdateConfig)
	group.Put("/items", h.HandleEquipItem)
}

// HandleUnlocks handles GET /avatar/unlocks?userId=.
func (h *AvatarHandler) HandleUnlocks(c *fiber.Ctx) error {
	state, err := h.avatar.Unlocks(c.UserContext(), actor(c, c.Query("userId")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(state)
}

// HandleGet handles GET /avatar?userId=.
func (h *AvatarHandler) HandleGet(c *fiber.Ctx) error {
	state, err := h.avatar.Get(c.UserContext(), actor(c, c.Query("userId")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(state)
}

// AvatarConfigRequest is the body of POST /avatar.
type AvatarConfigRequest struct {
	UserID       string          `json:"userId"`
	AvatarConfig json.RawMessage `json:"avatarConfig"`
}

// HandleUpdateConfig handles POST /avatar.
func (h *AvatarHandler) HandleUpdateConfig(c *fiber.Ctx) error {
	var req AvatarConfigRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	cfg, err := h.avatar.UpdateConfig(c.UserContext(), actor(c, req.UserID), req.AvatarConfig)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "avatarConfig": cfg})
}

// EquipItemRequest is the body of PUT /avatar/items.
type EquipItemRequest struct {
	UserID    string `json:"userId"`
	ItemType  string `json:"itemType" validate:"required,max=32"`
	ItemName  string `json:"itemName" validate:"required,max=200"`
	ItemImage string `json:"itemImage"`
}

// HandleEquipItem handles PUT /avatar/items.
func (h *AvatarHandler) HandleEquipItem(c *fiber.Ctx) error {
	var req EquipItemRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	item, err := h.avatar.EquipItem(c.UserContext(), services.EquipItemInput{
		UserID:    actor(c, req.UserID),
		ItemType:  req.ItemType,
		ItemName:  req.ItemName,
		ItemImage: req.ItemImage,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "avatarItem": item})
}
