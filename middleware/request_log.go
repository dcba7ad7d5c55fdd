package middleware

import (
	"time"

	"creature-training-system/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// LocalRequestID is where RequestID stores the id for later handlers.
const LocalRequestID = "request_id"

// RequestID reuses the caller's X-Request-ID or generates one, and echoes it
// on the response.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: LocalRequestID,
	})
}

// RequestLogger logs one line per request after the handler ran. Mount it
// after RequestID.
func RequestLogger(log *logger.Logger) fiber.Handler {
	log = log.With("middleware", "RequestLogger")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		userID, _ := c.Locals(LocalUserID).(string)
		requestID, _ := c.Locals(LocalRequestID).(string)
		kv := []interface{}{
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start).String(),
			"user_id", userID,
		}
		switch {
		case status >= 500:
			log.Error("request", kv...)
		case status >= 400:
			log.Warn("request", kv...)
		default:
			log.Info("request", kv...)
		}
		return err
	}
}
