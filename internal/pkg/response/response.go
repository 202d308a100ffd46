package response

import (
	"github.com/gofiber/fiber/v2"
)

// Body is the envelope every endpoint answers with.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Success sends 200 with { success: true, message, data }.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Body{Success: true, Message: message, Data: data})
}

// Created sends 201 with { success: true, message, data }.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Body{Success: true, Message: message, Data: data})
}

// Error sends statusCode with { success: false, message }.
func Error(c *fiber.Ctx, message string, statusCode int) error {
	return c.Status(statusCode).JSON(errorBody{Success: false, Message: message})
}

// Forbidden sends 403 with the error envelope.
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusForbidden)
}
