package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"fitzty/internal/services"
	"fitzty/pkg/logger"
)

// ChallengeHandler serves challenge creation, listing and joins.
type ChallengeHandler struct {
	base
	challenges *services.ChallengeService
}

// NewChallengeHandler creates a new ChallengeHandler.
func NewChallengeHandler(challenges *services.ChallengeService, log *logger.Logger) *ChallengeHandler {
	return &ChallengeHandler{base: newBase(log), challenges: challenges}
}

// RegisterRoutes registers the challenge routes.
func (h *ChallengeHandler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/challenges")
	group.Post("/", h.HandleCreate)
	group.Get("/", h.HandleList)
	group.Post("/:id/join", h.HandleJoin)
}

// CreateChallengeRequest is the body of POST /challenges.
type CreateChallengeRequest struct {
	Slug        string     `json:"slug" validate:"required,max=100"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

// HandleCreate handles POST /challenges.
func (h *ChallengeHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateChallengeRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	challenge, err := h.challenges.Create(c.UserContext(), services.CreateChallengeInput{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(challenge)
}

// HandleList handles GET /challenges?open=&limit=.
func (h *ChallengeHandler) HandleList(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 1)
	if err != nil {
		return h.fail(c, err)
	}
	challenges, err := h.challenges.List(c.UserContext(), c.QueryBool("open"), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"challenges": challenges})
}

// JoinChallengeRequest is the body of POST /challenges/:id/join.
type JoinChallengeRequest struct {
	UserID string  `json:"userId"`
	PostID *string `json:"postId"`
}

// HandleJoin handles POST /challenges/:id/join.
func (h *ChallengeHandler) HandleJoin(c *fiber.Ctx) error {
	var req JoinChallengeRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	res, err := h.challenges.Join(c.UserContext(), c.Params("id"), actor(c, req.UserID), req.PostID)
	if err != nil {
		return h.fail(c, err)
	}
	body := fiber.Map{"entry": res.Entry, "joined": res.Joined}
	if res.Progress != nil {
		body["xp"] = res.Progress.XP
		body["level"] = res.Progress.Level
		body["unlocked"] = res.Progress.Unlocked
	}
	return c.JSON(body)
}
