package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"erp-backend/internal/config"
	"erp-backend/internal/infrastructure/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupRouterTest(t *testing.T, withRedis bool) *fiber.App {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	var rdb *redis.Client
	if withRedis {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() {
			rdb.Close()
			mr.Close()
		})
	}
	cfg := &config.Config{Env: "test", ApproverRoles: []string{"Manager"}, HealthAdminKey: "k"}
	return New(cfg, db, rdb)
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func data(out map[string]interface{}) map[string]interface{} {
	d, _ := out["data"].(map[string]interface{})
	return d
}

func TestQuotationToProjectScenario(t *testing.T) {
	for _, withRedis := range []bool{false, true} {
		t.Run(fmt.Sprintf("redis=%v", withRedis), func(t *testing.T) {
			app := setupRouterTest(t, withRedis)

			code, out := call(t, app, "POST", "/api/v1/quotations", map[string]interface{}{
				"companyId": 1, "clientId": 2, "projectName": "Warehouse", "createdBy": 9,
			})
			require.Equal(t, fiber.StatusCreated, code, out)
			q := data(out)
			assert.Equal(t, "QT-001", q["quotationCode"])
			assert.Equal(t, "Draft", q["status"])
			id := fmt.Sprintf("%v", q["id"])

			code, out = call(t, app, "POST", "/api/v1/quotations/"+id+"/items", map[string]interface{}{
				"category": "Manpower", "itemName": "Mason", "quantity": 10, "unitRate": 120,
			})
			require.Equal(t, fiber.StatusCreated, code, out)
			assert.Equal(t, 1200.0, data(out)["totalAmount"])

			code, out = call(t, app, "POST", "/api/v1/quotations/"+id+"/items", map[string]interface{}{
				"category": "material", "itemName": "Cement", "quantity": 100, "unitRate": 40,
			})
			require.Equal(t, fiber.StatusCreated, code, out)

			code, out = call(t, app, "POST", "/api/v1/quotations/"+id+"/terms", map[string]interface{}{"content": "50% advance"})
			require.Equal(t, fiber.StatusCreated, code, out)

			code, out = call(t, app, "GET", "/api/v1/cost-breakdown?quotationId="+id, nil)
			require.Equal(t, fiber.StatusOK, code, out)
			totals := data(out)["totals"].(map[string]interface{})
			assert.Equal(t, 5200.0, totals["grandTotal"])
			assert.Equal(t, true, data(out)["consistent"])

			code, _ = call(t, app, "POST", "/api/v1/quotations/"+id+"/submit", nil)
			require.Equal(t, fiber.StatusOK, code)

			code, out = call(t, app, "POST", "/api/v1/quotations/"+id+"/items", map[string]interface{}{
				"category": "Tool", "itemName": "Drill", "quantity": 1, "unitRate": 10,
			})
			assert.Equal(t, fiber.StatusBadRequest, code)
			assert.Equal(t, false, out["success"])

			code, _ = call(t, app, "POST", "/api/v1/quotations/"+id+"/approve", map[string]interface{}{"approverId": 4, "approverRole": "Clerk"})
			assert.Equal(t, fiber.StatusForbidden, code)

			code, out = call(t, app, "POST", "/api/v1/quotations/"+id+"/approve", map[string]interface{}{"approverId": 4, "approverRole": "manager"})
			require.Equal(t, fiber.StatusOK, code, out)
			assert.Equal(t, "Approved", data(out)["status"])

			code, out = call(t, app, "POST", "/api/v1/quotations/"+id+"/convert", nil)
			require.Equal(t, fiber.StatusCreated, code, out)
			p := data(out)
			assert.Equal(t, "PRJ-001", p["projectCode"])
			budget := p["budget"].(map[string]interface{})
			assert.Equal(t, 1200.0, budget["labor"])
			assert.Equal(t, 4000.0, budget["materials"])

			code, _ = call(t, app, "POST", "/api/v1/quotations/"+id+"/convert", nil)
			assert.Equal(t, fiber.StatusConflict, code)

			code, out = call(t, app, "GET", "/api/v1/quotations/"+id, nil)
			require.Equal(t, fiber.StatusOK, code)
			assert.Equal(t, "Converted", data(out)["status"])
			assert.Len(t, data(out)["items"], 2)
			assert.Len(t, data(out)["terms"], 1)

			code, out = call(t, app, "GET", "/api/v1/quotations/"+id+"/approvals", nil)
			require.Equal(t, fiber.StatusOK, code)
			assert.Len(t, out["data"], 1)

			projectID := fmt.Sprintf("%v", p["id"])
			code, _ = call(t, app, "PUT", "/api/v1/projects/"+projectID+"/budget", map[string]interface{}{"labor": 1})
			assert.Equal(t, fiber.StatusConflict, code)

			code, out = call(t, app, "GET", "/api/v1/projects?companyId=1", nil)
			require.Equal(t, fiber.StatusOK, code)
			assert.Len(t, out["data"], 1)
		})
	}
}

func TestListRendersEmptyArray(t *testing.T) {
	app := setupRouterTest(t, false)
	code, out := call(t, app, "GET", "/api/v1/quotations", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, []interface{}{}, out["data"])

	code, out = call(t, app, "GET", "/api/v1/quotations?status=Pending", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, false, out["success"])
}

func TestCostBreakdownExport(t *testing.T) {
	app := setupRouterTest(t, false)
	code, out := call(t, app, "POST", "/api/v1/quotations", map[string]interface{}{
		"companyId": 1, "clientId": 2, "projectName": "Depot", "createdBy": 9,
	})
	require.Equal(t, fiber.StatusCreated, code, out)
	id := fmt.Sprintf("%v", data(out)["id"])
	code, _ = call(t, app, "POST", "/api/v1/quotations/"+id+"/items", map[string]interface{}{
		"category": "Transport", "itemName": "Truck", "quantity": 2, "unitRate": 75.5,
	})
	require.Equal(t, fiber.StatusCreated, code)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/cost-breakdown/export?quotationId="+id, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "QT-001-cost-breakdown.xlsx")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.NotEmpty(t, f.GetSheetList())

	code, _ = call(t, app, "GET", "/api/v1/cost-breakdown/export", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, _ = call(t, app, "GET", "/api/v1/cost-breakdown?quotationId=404", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestHealthAndMetricsMounted(t *testing.T) {
	app := setupRouterTest(t, true)
	code, out := call(t, app, "GET", "/health/json", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "quotation-engine", out["service"])
	assert.Equal(t, "ok", out["status"])

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "api_requests_total")
}
