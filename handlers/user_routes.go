// handlers/user_routes.go
package handlers

import (
	"creature-training-system/logger"
	"creature-training-system/services"

	"github.com/gofiber/fiber/v2"
)

type settingsRequest struct {
	DailyFactTime     *string `json:"dailyFactTime" validate:"omitempty,clock"`
	NotificationTime  *string `json:"notificationTime" validate:"omitempty,clock"`
	ShowOnLeaderboard *bool   `json:"showOnLeaderboard"`
}

func SetupUserRoutes(api fiber.Router, learning *services.LearningService, log *logger.Logger) {
	api.Get("/user", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(u)
	})

	api.Get("/user/stats", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		stats, err := learning.Stats(c.UserContext(), u.ID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(stats)
	})

	api.Post("/user/daily-login", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		res, err := learning.DailyLogin(c.UserContext(), u.ID, learning.Now())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(res)
	})

	api.Get("/user/settings", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		s, err := learning.GetSettings(c.UserContext(), u.ID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(s)
	})

	api.Post("/user/settings", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		var req settingsRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		s, err := learning.UpdateSettings(c.UserContext(), u.ID, services.SettingsUpdate{
			DailyFactTime:     req.DailyFactTime,
			NotificationTime:  req.NotificationTime,
			ShowOnLeaderboard: req.ShowOnLeaderboard,
		})
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(s)
	})

	api.Get("/users/search", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		res, err := learning.SearchUsers(c.UserContext(), u.ID, c.Query("q"), c.QueryInt("limit", 10))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(res)
	})
}
