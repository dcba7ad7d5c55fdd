// handlers/team_routes.go
package handlers

import (
	"creature-training-system/logger"
	"creature-training-system/services"

	"github.com/gofiber/fiber/v2"
)

type createTeamRequest struct {
	Name         string `json:"name" validate:"required,max=50"`
	CreatureName string `json:"creatureName" validate:"omitempty,max=80"`
}

type joinTeamRequest struct {
	Code string `json:"code" validate:"required"`
}

func SetupTeamRoutes(api fiber.Router, learning *services.LearningService, teams *services.TeamService, log *logger.Logger) {
	api.Get("/teams", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		list, err := teams.ListTeams(c.UserContext(), u.ID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(list)
	})

	api.Post("/teams", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		var req createTeamRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		team, err := teams.CreateTeam(c.UserContext(), u.ID, req.Name, req.CreatureName)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(team)
	})

	api.Post("/teams/join", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		var req joinTeamRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		team, err := teams.JoinTeam(c.UserContext(), u.ID, req.Code)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(team)
	})

	api.Post("/teams/:id/leave", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		if err := teams.LeaveTeam(c.UserContext(), u.ID, c.Params("id")); err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	api.Get("/teams/:id/members", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		members, err := teams.Members(c.UserContext(), u.ID, c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(members)
	})

	api.Get("/teams/:id/leaderboard", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		rows, err := teams.Leaderboard(c.UserContext(), u.ID, c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(rows)
	})
}
