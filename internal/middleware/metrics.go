package middleware

import (
	"time"

	"erp-backend/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency per route pattern, so /quotations/:id is one series
// regardless of the id.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}
		path := c.Route().Path
		if path == "" || path == "/" {
			path = "unmatched"
		}
		metrics.RecordAPIRequest(c.Method(), path, status, time.Since(start).Seconds())
		return err
	}
}
