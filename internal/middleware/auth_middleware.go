package middleware

import (
	"strings"

	"practice-engine/internal/domain"
	"practice-engine/internal/logger"
	"practice-engine/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals
)

// OptionalIdentity attributes the request to a user when a valid bearer token
// is present. Any other request proceeds anonymously.
func OptionalIdentity(identity service.IdentityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return c.Next()
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			logger.Get().Debug("OptionalIdentity: Authorization scheme is not Bearer, proceeding as anonymous.")
			return c.Next()
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return c.Next()
		}

		userID, err := identity.UserIDFromToken(c.Context(), tokenString)
		if err != nil {
			logger.Get().Debug("OptionalIdentity: token not accepted, proceeding as anonymous.", zap.Error(err))
			return c.Next()
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// RequireIdentity rejects requests that OptionalIdentity left anonymous.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return domain.NewUnauthorizedError("a valid identity token is required")
		}
		return c.Next()
	}
}

// UserID returns the attributed user of the request, or "" for anonymous callers.
func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(UserIDKey).(string)
	return userID
}
