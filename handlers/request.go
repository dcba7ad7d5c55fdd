// handlers/request.go
package handlers

import (
	"creature-training-system/middleware"
	"creature-training-system/models"
	"creature-training-system/services"
	"creature-training-system/utils"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes JSON into out and runs struct validation.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return &services.AppError{Code: "invalid_body", Message: "request body is not valid JSON", Err: services.ErrInvalidInput}
	}
	if err := utils.Validator.Struct(out); err != nil {
		if _, msg, ok := utils.ValidationMessage(err); ok {
			return &services.AppError{Code: "validation_error", Message: msg, Err: services.ErrInvalidInput}
		}
		return err
	}
	return nil
}

// currentUser resolves the gateway identity to a local user, creating it on
// first sight.
func currentUser(c *fiber.Ctx, learning *services.LearningService) (*models.User, error) {
	externalID, _ := c.Locals(middleware.LocalUserID).(string)
	username, _ := c.Locals(middleware.LocalUsername).(string)
	return learning.EnsureUser(c.UserContext(), externalID, username)
}
