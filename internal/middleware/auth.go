package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// NewJobAuth guards the refresh trigger endpoints with a shared bearer
// secret. The expected secret is injected explicitly so tests can supply
// their own value. Rejection happens before any work unit runs, so an
// unauthorized call writes zero run records.
func NewJobAuth(secret string) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if secret == "" || !ok ||
			subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "UNAUTHORIZED",
					"message": "Missing or invalid job credential",
				},
			})
		}
		return c.Next()
	}
}
