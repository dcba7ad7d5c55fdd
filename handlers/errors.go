// handlers/errors.go
package handlers

import (
	"errors"

	"creature-training-system/logger"
	"creature-training-system/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors to statuses. Unexpected errors are logged
// and rendered without their cause.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var appErr *services.AppError
	code, msg := "", ""
	if errors.As(err, &appErr) {
		code, msg = appErr.Code, appErr.Message
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	}

	if status == fiber.StatusInternalServerError {
		log.Error("❌ unexpected error", "path", c.Path(), "method", c.Method(), "error", err)
		return c.Status(status).JSON(fiber.Map{
			"error": "internal server error",
			"code":  "internal",
		})
	}
	if msg == "" {
		msg = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
		"code":  code,
	})
}
