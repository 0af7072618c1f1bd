package handlers

import (
	"coldtrack/internal/core/domain"
	"coldtrack/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// currentActor builds the acting identity from the auth middleware locals
func currentActor(c *fiber.Ctx) (services.Actor, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return services.Actor{}, false
	}

	roleName, ok := c.Locals("role").(string)
	if !ok {
		return services.Actor{}, false
	}

	role, err := domain.ParseRole(roleName)
	if err != nil {
		return services.Actor{}, false
	}

	return services.Actor{UserID: userID, Role: role}, true
}
