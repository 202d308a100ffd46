package health

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	healthsvc "erp-backend/internal/application/health"
	"erp-backend/internal/middleware"
	"erp-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const serviceName = "quotation-engine"

// Handlers holds dependencies for health endpoints. Rdb may be nil.
type Handlers struct {
	Rdb            *redis.Client
	DB             healthsvc.DBPinger
	HealthAdminKey string
	StartedAt      time.Time
}

// Reset clears health stats in Redis. Requires query key=HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" || key != h.HealthAdminKey {
		return response.Forbidden(c, "Unauthorized")
	}
	if h.Rdb == nil {
		return response.Error(c, "Traffic stats are disabled without Redis", fiber.StatusServiceUnavailable)
	}
	ctx := context.Background()
	keys := []string{middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime, middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq, middleware.KeyErrorLog}
	if err := h.Rdb.Del(ctx, keys...).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError)
	}
	if err := h.Rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"reset": true})
}

// JSON returns service status, runtime, traffic and dependency health.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	startedAt := h.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	result := healthsvc.CollectHealth(c.Context(), h.Rdb, h.DB, startedAt)
	return c.JSON(fiber.Map{
		"service":      serviceName,
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"dependencies": result.Dependencies,
	})
}

// Errors returns the most recent server errors recorded by HealthMarker.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	entries := []map[string]interface{}{}
	if h.Rdb == nil {
		return c.JSON(entries)
	}
	raw, err := h.Rdb.LRange(context.Background(), middleware.KeyErrorLog, 0, 49).Result()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(entries)
	}
	for _, s := range raw {
		var m map[string]interface{}
		if json.Unmarshal([]byte(s), &m) == nil && m != nil {
			entries = append(entries, m)
		}
	}
	return c.JSON(entries)
}
