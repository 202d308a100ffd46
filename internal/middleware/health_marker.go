package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys shared by HealthMarker (writer) and the health collector (reader).
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"

	errorLogSize = 50
)

// HealthMarker records request stats in Redis (skip /, /health*, /metrics, favicon). Server errors
// are also pushed onto a capped error log served by /health/errors.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil || skipHealthStats(c.Path()) {
			return c.Next()
		}

		start := time.Now()
		ctx := context.Background()
		lastReq, _ := json.Marshal(map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		_ = rdb.Set(ctx, KeyLastReq, lastReq, 0).Err()
		_ = rdb.Incr(ctx, KeyReqTotal).Err()

		err := c.Next()

		_ = rdb.Incr(ctx, KeyResCount).Err()
		_ = rdb.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds())).Err()
		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}
		if status >= fiber.StatusInternalServerError {
			_ = rdb.Incr(ctx, KeyReqErrors).Err()
			message := "Internal Server Error"
			if err != nil {
				message = err.Error()
			}
			entry, _ := json.Marshal(map[string]interface{}{
				"time":     time.Now().UTC(),
				"path":     c.OriginalURL(),
				"method":   c.Method(),
				"status":   status,
				"trace_id": GetTraceID(c),
				"message":  message,
			})
			pipe := rdb.TxPipeline()
			pipe.LPush(ctx, KeyErrorLog, entry)
			pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
			_, _ = pipe.Exec(ctx)
		}
		return err
	}
}

func skipHealthStats(path string) bool {
	return path == "/" || path == "/reset" || path == "/metrics" ||
		strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon")
}
