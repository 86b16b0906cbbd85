package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vertexhq/vertex-api/internal/utils"
)

// AttachJWTLocals copies the verified user id out of the parsed token
// into c.Locals("userId"). Handlers never read identity from request
// payloads.
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Locals("user")
		if raw == nil {
			return fiber.ErrUnauthorized
		}

		token, ok := raw.(*jwt.Token)
		if !ok || token == nil {
			return fiber.ErrUnauthorized
		}

		claims, ok := token.Claims.(*utils.Claims)
		if !ok {
			return fiber.ErrUnauthorized
		}

		uid := strings.TrimSpace(claims.UserID)
		if uid == "" {
			return fiber.ErrUnauthorized
		}

		c.Locals("userId", uid)
		return c.Next()
	}
}
