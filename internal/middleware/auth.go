package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/originhub/originhub-api/internal/config"
	"github.com/originhub/originhub-api/internal/dto"
	"github.com/originhub/originhub-api/internal/identity"

	jwtware "github.com/gofiber/contrib/jwt"
)

// BearerAuth verifies an Authorization bearer token when AUTH_JWT_SECRET is
// configured. Requests without the header pass through untouched so the
// X-User-Id header keeps working.
func BearerAuth(cfg *config.Config) fiber.Handler {
	if cfg.AuthJWTSecret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.AuthJWTSecret)},
		ContextKey: identity.TokenKey(),
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:  "invalid or expired token",
				Detail: "invalid or expired token",
			})
		},
	})
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := identity.Resolve(c)
		if id == "" {
			msg := "X-User-Id header is required"
			if c.Get(fiber.HeaderAuthorization) != "" {
				msg = "token has no subject"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: msg, Detail: msg})
		}
		identity.SetRequesterID(c, id)
		return c.Next()
	}
}
