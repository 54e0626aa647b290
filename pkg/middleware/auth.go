package middleware

import (
	"strings"

	"bi-admin/pkg/auth"
	"bi-admin/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const identityKey = "identity"

// AuthMiddleware resolves the caller identity from the bearer token. Requests
// without a resolvable identity stop here with 401.
func AuthMiddleware(jwtManager *auth.JWTManager, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(fiber.HeaderAuthorization)
		if token == "" {
			logger.Warn("Missing authorization token", zap.String("path", c.Path()))
			return response.Fail(c, fiber.StatusUnauthorized, "Authorization token required")
		}

		token = strings.TrimPrefix(token, "Bearer ")

		identity, err := jwtManager.Resolve(token)
		if err != nil {
			logger.Warn("Invalid token", zap.Error(err))
			return response.Fail(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// GetIdentity returns the identity stored by AuthMiddleware.
func GetIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	identity, ok := c.Locals(identityKey).(auth.Identity)
	return identity, ok
}

// SetIdentity is used by tests and internal callers that resolve identity elsewhere.
func SetIdentity(c *fiber.Ctx, identity auth.Identity) {
	c.Locals(identityKey, identity)
}
