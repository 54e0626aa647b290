package response

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Status  int    `json:"status,omitempty"`
}

func Success(c *fiber.Ctx, data any) error {
	return c.JSON(Envelope{
		Success: true,
		Data:    data,
	})
}

// Fail writes an error envelope with the given HTTP status.
func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{
		Success: false,
		Error:   message,
		Status:  status,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Fail(c, fiber.StatusUnauthorized, "unauthorized")
}

func Forbidden(c *fiber.Ctx) error {
	return Fail(c, fiber.StatusForbidden, "forbidden")
}

func NotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "not found"
	}
	return Fail(c, fiber.StatusNotFound, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "internal server error"
	}
	return Fail(c, fiber.StatusInternalServerError, message)
}
