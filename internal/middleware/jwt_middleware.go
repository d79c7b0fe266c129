package middleware

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"

	"fitzty/pkg/logger"
)

// UserIDKey is the fiber local holding the authenticated user id.
const UserIDKey = "user_id"

// TokenValidator parses a bearer token into its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (jwt.MapClaims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(validator TokenValidator, log *logger.Logger) fiber.Handler {
	return authenticate(validator, log, true)
}

// OptionalAuth accepts anonymous requests but still rejects a bad token, so a
// caller that sends credentials always gets them checked.
func OptionalAuth(validator TokenValidator, log *logger.Logger) fiber.Handler {
	return authenticate(validator, log, false)
}

func authenticate(validator TokenValidator, log *logger.Logger, required bool) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			if !required {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
				"error":   "unauthorized",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
				"error":   "unauthorized",
			})
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			log.Debug("JWT validation failed", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   "unauthorized",
			})
		}

		if id, ok := claims["user_id"].(string); ok && id != "" {
			c.Locals(UserIDKey, id)
		}
		c.Locals("username", claims["username"])
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
