package bootstrap

import (
	"erp-backend/internal/config"
	"erp-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
)

// New builds the quotation engine app from the environment for serverless hosting; the api
// handler imports this package rather than internal ones.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
