package handlers

import (
	"context"
	"time"

	"bi-admin/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Check reports the health of one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
	logger *zap.Logger
}

func NewHealthHandler(checks map[string]Check, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

// Health godoc
// @Summary Liveness and dependency status
// @Tags health
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response.Envelope{
			Success: false,
			Data:    status,
			Error:   "dependency unavailable",
			Status:  fiber.StatusServiceUnavailable,
		})
	}
	return response.Success(c, fiber.Map{"status": "ok", "dependencies": status})
}
