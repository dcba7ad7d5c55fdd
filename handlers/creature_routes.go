// handlers/creature_routes.go
package handlers

import (
	"creature-training-system/logger"
	"creature-training-system/services"

	"github.com/gofiber/fiber/v2"
)

type renameRequest struct {
	Name string `json:"name" validate:"required"`
}

func SetupCreatureRoutes(api fiber.Router, learning *services.LearningService, log *logger.Logger) {
	api.Get("/creature", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		creature, err := learning.GetCreature(c.UserContext(), u.ID, learning.Now())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(creature)
	})

	api.Post("/creature/feed", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		res, err := learning.FeedCreature(c.UserContext(), u.ID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(res)
	})

	api.Patch("/creature/rename", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		var req renameRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		creature, err := learning.RenameCreature(c.UserContext(), u.ID, req.Name)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(creature)
	})
}
