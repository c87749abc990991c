package httpapi

import (
	"errors"
	"strconv"
	"time"

	"expensio/internal/common"

	"github.com/gofiber/fiber/v2"
)

const queryDateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

// fail maps a service error onto an HTTP status. Wrapped sentinel errors from
// the common package drive the mapping; anything unrecognized is a 500 with
// the detail withheld from the client.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "unauthorized"})
	case errors.Is(err, common.ErrorForbidden):
		return c.Status(fiber.StatusForbidden).JSON(errorResponse{Error: "forbidden"})
	case errors.Is(err, common.ErrorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: err.Error()})
	default:
		s.logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "internal server error"})
	}
}

// parseDate accepts plain dates and RFC 3339 timestamps. An empty value
// yields the zero time.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(queryDateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Join(common.ErrorValidation, err)
	}
	return t, nil
}

func parseAmount(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Join(common.ErrorValidation, err)
	}
	return amount, nil
}
