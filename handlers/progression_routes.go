// handlers/progression_routes.go
package handlers

import (
	"creature-training-system/logger"
	"creature-training-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(
	api fiber.Router,
	learning *services.LearningService,
	achievements *services.AchievementService,
	leaderboard *services.LeaderboardService,
	facts *services.FactService,
	log *logger.Logger,
) {
	api.Get("/leaderboard", func(c *fiber.Ctx) error {
		entries, err := leaderboard.Top(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(entries)
	})

	api.Get("/achievements", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		list, err := achievements.List(c.UserContext(), u.ID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(list)
	})

	api.Get("/facts", func(c *fiber.Ctx) error {
		list, err := facts.ListFacts(c.UserContext(), c.Query("category"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(list)
	})

	api.Get("/daily-fact", func(c *fiber.Ctx) error {
		f, err := facts.DailyFact(c.UserContext(), learning.Now())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(f)
	})
}
