package handlers

import (
	"errors"
	"fmt"

	"bi-admin/internal/service"
	"bi-admin/pkg/auth"
	"bi-admin/pkg/middleware"
	"bi-admin/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondError is the single place where service errors become HTTP statuses.
// Store details are logged, never sent to the client.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		return response.Unauthorized(c)
	case errors.Is(err, service.ErrForbidden):
		return response.Forbidden(c)
	case errors.Is(err, service.ErrNotFound):
		return response.NotFound(c, "")
	}

	logger.Error("Request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return response.ServerError(c, "")
}

func getIdentity(c *fiber.Ctx) (auth.Identity, error) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return auth.Identity{}, service.ErrUnauthenticated
	}
	return identity, nil
}

func parseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", service.ErrValidation, name)
	}
	return id, nil
}
