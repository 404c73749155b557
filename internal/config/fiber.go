package config

import (
	"errors"

	"avril/pkg/response"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// Audio uploads for transcription are the largest bodies the assistant takes.
const maxBodyBytes = 30 * 1024 * 1024

func NewFiber(logger *logrus.Logger) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:               "Avril",
			BodyLimit:             maxBodyBytes,
			StrictRouting:         true,
			CaseSensitive:         true,
			IdleTimeout:           envDuration("HTTP_IDLE_TIMEOUT", 0),
			DisableStartupMessage: logger.GetLevel() < logrus.DebugLevel,
			JSONEncoder:           jsoniter.Marshal,
			JSONDecoder:           jsoniter.Unmarshal,
			ErrorHandler:          errorHandler(logger),
		})

	return app
}

// errorHandler renders errors that escape a handler or middleware in the
// same {"error": ...} shape the handlers use.
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		code := response.StatusCode(err)
		if code >= fiber.StatusInternalServerError {
			logger.WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Error("Unhandled request error")
			return c.Status(code).JSON(fiber.Map{"error": "An unexpected error occurred"})
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
