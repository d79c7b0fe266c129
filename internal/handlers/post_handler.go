package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fitzty/internal/services"
	"fitzty/pkg/logger"
)

// PostHandler handles posts and the interactions on them.
type PostHandler struct {
	base
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *services.PostService, log *logger.Logger) *PostHandler {
	return &PostHandler{base: newBase(log), posts: posts}
}

// RegisterRoutes registers the post routes.
func (h *PostHandler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/posts")
	group.Post("/", h.HandleCreate)
	group.Post("/like", h.HandleLike)
	group.Post("/save", h.HandleSave)
	group.Post("/:id/comments", h.HandleComment)
	group.Delete("/:id/comments/:commentId", h.HandleDeleteComment)
}

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	UserID      string   `json:"userId"`
	Content     string   `json:"content" validate:"max=5000"`
	Images      []string `json:"images" validate:"max=10"`
	AvatarImage string   `json:"avatarImage"`
	Tags        []string `json:"tags" validate:"max=30,dive,max=64"`
	Style       string   `json:"style" validate:"max=64"`
	Brand       string   `json:"brand" validate:"max=100"`
	Color       string   `json:"color" validate:"max=64"`
	Price       string   `json:"price" validate:"max=32"`
	IsPublic    *bool    `json:"isPublic"`
}

// HandleCreate handles POST /posts.
func (h *PostHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	post, progress, err := h.posts.Create(c.UserContext(), services.CreatePostInput{
		UserID:      actor(c, req.UserID),
		Content:     req.Content,
		Images:      req.Images,
		AvatarImage: req.AvatarImage,
		Tags:        req.Tags,
		Style:       req.Style,
		Brand:       req.Brand,
		Color:       req.Color,
		Price:       req.Price,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post, "progress": progress})
}

// InteractionRequest is the body of the like and save toggles.
type InteractionRequest struct {
	UserID string `json:"userId"`
	PostID string `json:"postId" validate:"required"`
}

// HandleLike handles POST /posts/like.
func (h *PostHandler) HandleLike(c *fiber.Ctx) error {
	var req InteractionRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	out, err := h.posts.ToggleLike(c.UserContext(), actor(c, req.UserID), req.PostID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"liked": out.Active, "count": out.Count})
}

// HandleSave handles POST /posts/save.
func (h *PostHandler) HandleSave(c *fiber.Ctx) error {
	var req InteractionRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	out, err := h.posts.ToggleSave(c.UserContext(), actor(c, req.UserID), req.PostID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"saved": out.Active, "count": out.Count})
}

// CommentRequest is the body of POST /posts/:id/comments.
type CommentRequest struct {
	UserID  string `json:"userId"`
	Content string `json:"content" validate:"required,max=2000"`
}

// HandleComment handles POST /posts/:id/comments.
func (h *PostHandler) HandleComment(c *fiber.Ctx) error {
	var req CommentRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	comment, progress, err := h.posts.Comment(c.UserContext(), actor(c, req.UserID), c.Params("id"), req.Content)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment, "progress": progress})
}

// HandleDeleteComment handles DELETE /posts/:id/comments/:commentId?userId=.
func (h *PostHandler) HandleDeleteComment(c *fiber.Ctx) error {
	err := h.posts.DeleteComment(c.UserContext(), actor(c, c.Query("userId")), c.Params("id"), c.Params("commentId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
