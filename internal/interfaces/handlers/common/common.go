// Package common holds the request parsing and error mapping shared by the quotation engine handlers.
package common

import (
	"errors"
	"strconv"
	"strings"

	"erp-backend/internal/domain"
	"erp-backend/internal/middleware"
	"erp-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Status maps a service error onto an HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrQuotationNotEditable):
		return fiber.StatusBadRequest
	case domain.IsNotFound(err):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrApproverNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyConverted),
		errors.Is(err, domain.ErrBudgetLocked),
		errors.Is(err, domain.ErrConflictingWrite):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// WriteError renders err in the error envelope. Unexpected errors are logged and hidden behind a
// generic message.
func WriteError(c *fiber.Ctx, err error) error {
	code := Status(err)
	if code == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		return response.Error(c, "Internal Server Error", code)
	}
	return response.Error(c, err.Error(), code)
}

// ParseBody decodes the request body into v. An empty body is accepted when optional is true.
func ParseBody(c *fiber.Ctx, v interface{}, optional bool) error {
	if len(strings.TrimSpace(string(c.Body()))) == 0 {
		if optional {
			return nil
		}
		return errors.New("Request body is required")
	}
	if err := c.BodyParser(v); err != nil {
		return errors.New("Invalid request body")
	}
	return nil
}

// BadRequest sends 400 with message.
func BadRequest(c *fiber.Ctx, message string) error {
	return response.Error(c, message, fiber.StatusBadRequest)
}

// QuotationID parses the quotation id path parameter.
func QuotationID(c *fiber.Ctx, param string) (domain.QuotationID, error) {
	return domain.ParseQuotationID(c.Params(param))
}

// UintParam parses a positive integer path parameter.
func UintParam(c *fiber.Ctx, param string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("Invalid " + param)
	}
	return uint(n), nil
}

// UintQuery parses an optional positive integer query value; absent yields 0.
func UintQuery(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("Invalid " + key)
	}
	return uint(n), nil
}
