// handlers/routes.go
package handlers

import (
	"context"

	"creature-training-system/logger"
	"creature-training-system/middleware"
	"creature-training-system/services"

	"github.com/gofiber/fiber/v2"
)

type Deps struct {
	Learning     *services.LearningService
	Teams        *services.TeamService
	Achievements *services.AchievementService
	Shop         *services.ShopService
	Leaderboard  *services.LeaderboardService
	Facts        *services.FactService
	Log          *logger.Logger

	GatewayToken string
	DemoMode     bool
	// Ping checks the database for /healthz.
	Ping func(ctx context.Context) error
}

// Register mounts every route. /healthz is open; everything else needs the
// gateway token, and /api also needs a user context.
func Register(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if d.Ping != nil {
			if err := d.Ping(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api",
		middleware.GatewayAuthMiddleware(d.GatewayToken, d.Log),
		middleware.UserContextMiddleware(d.DemoMode, d.Log),
	)

	SetupUserRoutes(api, d.Learning, d.Log)
	SetupCreatureRoutes(api, d.Learning, d.Log)
	SetupLearningRoutes(api, d.Learning, d.Log)
	SetupProgressionRoutes(api, d.Learning, d.Achievements, d.Leaderboard, d.Facts, d.Log)
	SetupShopRoutes(api, d.Learning, d.Shop, d.Log)
	SetupOfferRoutes(api, d.Learning, d.Shop, d.Log)
	SetupTeamRoutes(api, d.Learning, d.Teams, d.Log)
}
