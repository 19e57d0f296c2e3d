// Package identity resolves who is making a request.
package identity

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// HeaderUserID carries the caller's provider user id when no bearer token is sent.
const HeaderUserID = "X-User-Id"

const (
	tokenKey     = "user"
	requesterKey = "requester_id"
)

// TokenKey is the fiber locals key the JWT middleware stores the token under.
func TokenKey() string {
	return tokenKey
}

// Resolve returns the requester id from a verified bearer token's sub claim,
// falling back to the X-User-Id header only when no token was sent. A token
// without a usable sub resolves to empty. Empty means anonymous.
func Resolve(c *fiber.Ctx) string {
	if token, ok := c.Locals(tokenKey).(*jwt.Token); ok {
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ""
		}
		sub, _ := claims["sub"].(string)
		return strings.TrimSpace(sub)
	}
	return strings.TrimSpace(c.Get(HeaderUserID))
}

// SetRequesterID stores the resolved id for downstream handlers.
func SetRequesterID(c *fiber.Ctx, id string) {
	c.Locals(requesterKey, id)
}

// RequesterID returns the id stored by SetRequesterID, resolving it on demand
// for routes that do not require identity.
func RequesterID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requesterKey).(string); ok {
		return id
	}
	return Resolve(c)
}
