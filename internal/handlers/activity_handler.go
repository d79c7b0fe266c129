package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fitzty/internal/services"
	"fitzty/pkg/logger"
)

// ActivityHandler records progression activity.
type ActivityHandler struct {
	base
	activity *services.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activity *services.ActivityService, log *logger.Logger) *ActivityHandler {
	return &ActivityHandler{base: newBase(log), activity: activity}
}

// RegisterRoutes registers the activity routes.
func (h *ActivityHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/activity", h.HandleRecord)
}

// ActivityRequest is the body of POST /activity.
type ActivityRequest struct {
	UserID string `json:"userId"`
	Action string `json:"action" validate:"required"`
}

// HandleRecord handles POST /activity.
func (h *ActivityHandler) HandleRecord(c *fiber.Ctx) error {
	var req ActivityRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	result, err := h.activity.RecordRaw(c.UserContext(), actor(c, req.UserID), req.Action)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}
