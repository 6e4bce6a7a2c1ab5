package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// HeaderAPIVersion carries the client's requested API version.
const HeaderAPIVersion = "X-Api-Version"

const defaultAPIVersion = "1.0.0"

// VersionMiddleware parses the X-Api-Version header and stores it in context
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get(HeaderAPIVersion, defaultAPIVersion)

		// Short forms alias to their full version
		if version == "1.0" || version == "1" {
			version = defaultAPIVersion
		}

		c.Locals("apiVersion", version)

		return c.Next()
	}
}
