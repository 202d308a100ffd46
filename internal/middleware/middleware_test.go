package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, app *fiber.App, method, path string, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffix: ".builder.example", DevPassword: "letmein"}))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	status, _ := decode(t, app, "GET", "/x", nil)
	assert.Equal(t, 200, status, "no origin passes")

	status, _ = decode(t, app, "GET", "/x", map[string]string{"Origin": "https://app.builder.example"})
	assert.Equal(t, 200, status)

	status, _ = decode(t, app, "OPTIONS", "/x", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, 204, status)

	status, _ = decode(t, app, "GET", "/x", map[string]string{"Origin": "https://evil.example", "dev-password": "letmein"})
	assert.Equal(t, 200, status)

	status, body := decode(t, app, "GET", "/x", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, 403, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Not allowed by CORS", body["message"])
}

func TestTracing_ReusesValidInboundID(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString(GetTraceID(c)) })

	id := uuid.New().String()
	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(traceIDHeader, id)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, id, resp.Header.Get(traceIDHeader))

	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(traceIDHeader, "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	generated := resp.Header.Get(traceIDHeader)
	assert.NotEqual(t, "not-a-uuid", generated)
	_, err = uuid.Parse(generated)
	assert.NoError(t, err)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(Tracing(), RouteLogger())
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db exploded") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	status, body := decode(t, app, "GET", "/boom", nil)
	assert.Equal(t, 500, status)
	assert.Equal(t, "Internal Server Error", body["message"])

	status, body = decode(t, app, "GET", "/teapot", nil)
	assert.Equal(t, 418, status)
	assert.Equal(t, "short and stout", body["message"])

	status, body = decode(t, app, "GET", "/missing", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, false, body["success"])
}

func TestHealthMarker_CountsAndLogsErrors(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(Tracing(), HealthMarker(rdb))
	app.Get("/api/v1/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/api/v1/fail", func(c *fiber.Ctx) error { return errors.New("storage down") })
	app.Get("/health/json", func(c *fiber.Ctx) error { return c.SendString("{}") })

	decode(t, app, "GET", "/api/v1/ok", nil)
	decode(t, app, "GET", "/api/v1/fail", nil)
	decode(t, app, "GET", "/health/json", nil)

	ctx := context.Background()
	total, err := rdb.Get(ctx, KeyReqTotal).Int()
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	failed, err := rdb.Get(ctx, KeyReqErrors).Int()
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	entries, err := rdb.LRange(ctx, KeyErrorLog, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &entry))
	assert.Equal(t, "storage down", entry["message"])
	assert.Equal(t, "/api/v1/fail", entry["path"])
}

func TestHealthMarker_NilRedisPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(HealthMarker(nil))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })
	status, _ := decode(t, app, "GET", "/x", nil)
	assert.Equal(t, 200, status)
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/quotations/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	status, _ := decode(t, app, "GET", "/quotations/12", nil)
	assert.Equal(t, 204, status)
	status, _ = decode(t, app, "GET", "/quotations/13", nil)
	assert.Equal(t, 204, status)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	var count float64
	for _, mf := range families {
		if mf.GetName() != "api_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["path"] == "/quotations/:id" && labels["status"] == "204" {
				count = m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, count)
}
