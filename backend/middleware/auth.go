package middleware

import (
	"errors"

	"github.com/KevinT25/GameTracker-Backend/backend/config"
	"github.com/KevinT25/GameTracker-Backend/backend/models"
	"github.com/KevinT25/GameTracker-Backend/backend/services"
	"github.com/KevinT25/GameTracker-Backend/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const actorKey = "actor"

// AuthMiddleware verifies the token, loads the user and stores the acting
// identity in the request locals.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "Unauthorized")
			}
			return utils.Fail(c, err)
		}

		c.Locals(actorKey, services.Actor{
			ID:       user.ID,
			Username: user.Username,
			Admin:    user.IsAdmin(),
		})
		return c.Next()
	}
}

// AdminMiddleware requires an authenticated administrator. Must run after
// AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := c.Locals(actorKey).(services.Actor)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if !actor.Admin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden - Admin access required",
			})
		}
		return c.Next()
	}
}

// ActorFromCtx returns the identity placed by AuthMiddleware.
func ActorFromCtx(c *fiber.Ctx) services.Actor {
	actor, _ := c.Locals(actorKey).(services.Actor)
	return actor
}
