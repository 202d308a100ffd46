package bootstrap

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SQLiteFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	app, err := New()
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/quotations", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
