package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs each request entry and exit with status, duration and trace ID.
// Server errors are logged at error level.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := GetTraceID(c)
		if traceID == "" {
			traceID = "no-trace-id"
		}
		start := time.Now()
		log.Debug().Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).Msg("Entering request")
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}
		level := zerolog.InfoLevel
		if status >= fiber.StatusInternalServerError {
			level = zerolog.ErrorLevel
		}
		log.WithLevel(level).Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).
			Int("status", status).Int64("ms", time.Since(start).Milliseconds()).Msg("Exiting request")
		return err
	}
}

// errorStatus is the status the global ErrorHandler will render for err.
func errorStatus(err error) int {
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
