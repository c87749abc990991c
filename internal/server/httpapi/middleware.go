package httpapi

import (
	"strings"

	"expensio/internal/server/auth"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userID"

// BearerAuth verifies the Authorization header and stores the acting user's
// id in the request locals.
func BearerAuth(secretKey []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "missing authorization header"})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "authorization header format must be Bearer {token}"})
		}

		userID, err := auth.GetUserIDFromToken(parts[1], secretKey)
		if err != nil || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "invalid or expired token"})
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
