// Package handlers exposes the services over HTTP with fiber.
package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"fitzty/internal/middleware"
	"fitzty/pkg/apperr"
	"fitzty/pkg/logger"
)

// NewApp builds a fiber app that speaks JSON through goccy/go-json and renders
// every error in the same {"message", "error"} shape as the handlers.
func NewApp(log *logger.Logger) *fiber.App {
	if log == nil {
		log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      "fitzty",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler(log),
	})
	app.Use(recover.New())
	return app
}

func errorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message, "error": strings.ToLower(strings.ReplaceAll(fe.Message, " ", "_"))})
		}
		log.Error("unhandled request error", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error", "error": apperr.KindInternal.String()})
	}
}

// base carries what every handler needs to decode requests and report errors.
type base struct {
	validate *validator.Validate
	log      *logger.Logger
}

func newBase(log *logger.Logger) base {
	if log == nil {
		log = logger.Nop()
	}
	return base{validate: validator.New(), log: log}
}

// bind parses the JSON body into v and validates it. An empty body leaves v zero.
func (b base) bind(c *fiber.Ctx, v any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(v); err != nil {
			return apperr.Validation("Invalid request body")
		}
	}
	if err := b.validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return apperr.Validation("Validation failed")
		}
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
		return apperr.Validation("%s", strings.Join(messages, "; "))
	}
	return nil
}

// fail writes err with the status its kind maps to.
func (b base) fail(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	if status >= fiber.StatusInternalServerError {
		b.log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	} else {
		b.log.Debug("request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": apperr.Message(err),
		"error":   apperr.KindOf(err).String(),
	})
}

// actor resolves who is acting. An authenticated user id always wins over the one
// supplied in the request.
func actor(c *fiber.Ctx, supplied string) string {
	if id := middleware.UserID(c); id != "" {
		return id
	}
	return strings.TrimSpace(supplied)
}

// queryInt reads an optional integer query parameter. Absent means 0; a value
// that is present must be at least atLeast.
func queryInt(c *fiber.Ctx, key string, atLeast int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", key)
	}
	if n < atLeast {
		return 0, apperr.Validation("%s must be at least %d", key, atLeast)
	}
	return n, nil
}
