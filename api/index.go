package handler

import (
	"net/http"

	"erp-backend/bootstrap"
	"erp-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
)

var fiberApp *fiber.App

func init() {
	var err error
	fiberApp, err = bootstrap.New()
	if err != nil {
		panic("app create: " + err.Error())
	}
}

// Handler is the serverless entry point. All requests are rewritten here.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()
	router.Handler(fiberApp).ServeHTTP(w, r)
}
