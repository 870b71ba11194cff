package middleware

import (
	"errors"
	"log"

	"sekolah/internal/models"
	"sekolah/internal/repositories"
	"sekolah/internal/sessions"

	"github.com/gofiber/fiber/v2"
)

// UserLocalsKey is where AuthRequired stores the resolved user for
// downstream handlers.
const UserLocalsKey = "user"

// AuthRequired resolves the request's session to a user and stores it in
// c.Locals(UserLocalsKey). Requests without a valid session are rejected
// with 401 before any handler logic runs.
func AuthRequired(manager *sessions.Manager, userRepo repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := manager.UserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authenticated",
			})
		}

		user, err := userRepo.GetByID(userID)
		if err != nil {
			// A session for a user that no longer exists is treated
			// as no session. Anything else is a store failure.
			if !errors.Is(err, repositories.ErrUserNotFound) {
				log.Printf("Error resolving session user %s: %v", userID, err)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authenticated",
			})
		}

		c.Locals(UserLocalsKey, user)
		return c.Next()
	}
}

// RoleRequired checks the role of the user AuthRequired resolved. It
// composes after AuthRequired on a route; a request that somehow reaches it
// without a resolved user is treated as unauthenticated, a resolved user
// with the wrong role gets 403.
func RoleRequired(roles ...string) fiber.Handler {
	allowed := make(map[string]bool)
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(UserLocalsKey).(*models.User)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authenticated",
			})
		}
		if !allowed[user.Role] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Forbidden",
			})
		}
		return c.Next()
	}
}
