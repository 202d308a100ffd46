package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopes(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error { return Success(c, "fine", fiber.Map{"n": 1}) })
	app.Get("/created", func(c *fiber.Ctx) error { return Created(c, "made", nil) })
	app.Get("/denied", func(c *fiber.Ctx) error { return Forbidden(c, "nope") })

	cases := []struct {
		path    string
		status  int
		success bool
		message string
		hasData bool
	}{
		{"/ok", 200, true, "fine", true},
		{"/created", 201, true, "made", true},
		{"/denied", 403, false, "nope", false},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.path)
		var out map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, tc.success, out["success"], tc.path)
		assert.Equal(t, tc.message, out["message"], tc.path)
		_, hasData := out["data"]
		assert.Equal(t, tc.hasData, hasData, tc.path)
	}
}
