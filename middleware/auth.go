// middleware/auth.go
package middleware

import (
	"strings"

	"creature-training-system/logger"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalRoles    = "user_roles"

	DemoUserID = "demo"
)

// UserContextMiddleware extracts user identity and roles set by Gateway.
// With demoMode, requests without X-User-ID act as the demo user.
func UserContextMiddleware(demoMode bool, log *logger.Logger) fiber.Handler {
	log = log.With("middleware", "UserContext")
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		username := strings.TrimSpace(c.Get("X-Username"))

		if userID == "" {
			if !demoMode {
				log.Warn("❌ [USER_CTX] X-User-ID missing", "path", c.Path())
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "missing X-User-ID: request must come through the gateway",
					"code":  "unauthorized",
				})
			}
			userID, username = DemoUserID, DemoUserID
		}

		var roles []string
		for _, r := range strings.Split(c.Get("X-User-Roles"), ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalUsername, username)
		c.Locals(LocalRoles, roles)
		return c.Next()
	}
}

// RequireRole rejects requests whose gateway roles do not include role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, _ := c.Locals(LocalRoles).([]string)
		for _, r := range roles {
			if strings.EqualFold(r, role) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient role",
			"code":  "forbidden",
		})
	}
}
