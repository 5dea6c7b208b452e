package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

// ownerHeader carries the caller identity set by the upstream gateway.
// Authentication happens before requests reach this service.
const ownerHeader = "X-User-ID"

// OwnerID returns the request's owner identity, or "" when absent.
func OwnerID(c fiber.Ctx) string {
	return strings.TrimSpace(c.Get(ownerHeader))
}

// RequireOwner rejects requests that arrive without a caller identity.
func RequireOwner() fiber.Handler {
	return func(c fiber.Ctx) error {
		if OwnerID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing " + ownerHeader + " header",
			})
		}
		return c.Next()
	}
}
