package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/petitionhub/petitiondb/internal/models"
	"github.com/petitionhub/petitiondb/internal/services"
	"github.com/petitionhub/petitiondb/internal/utils"
	"gorm.io/gorm"
)

// HeaderAuthToken is the request header carrying the bearer token.
const HeaderAuthToken = "X-Authorization"

// RequireAuth resolves the X-Authorization token to an account and stores it
// in context. Requests with a missing or unknown token get a 401.
func RequireAuth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(HeaderAuthToken)
		if token == "" {
			return utils.UnauthorizedResponse(c)
		}
		user, err := services.ResolveUserByToken(db, token)
		if err != nil {
			return utils.DomainErrorResponse(c, err)
		}
		if user == nil {
			return utils.UnauthorizedResponse(c)
		}
		c.Locals("user", user)
		return c.Next()
	}
}

// OptionalAuth resolves the token when present but never rejects the request.
// Handlers that vary their response by requester identity use this.
func OptionalAuth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(HeaderAuthToken)
		if token != "" {
			user, err := services.ResolveUserByToken(db, token)
			if err != nil {
				return utils.DomainErrorResponse(c, err)
			}
			if user != nil {
				c.Locals("user", user)
			}
		}
		return c.Next()
	}
}

// AuthenticatedUser returns the account resolved by RequireAuth/OptionalAuth,
// or nil for an unauthenticated request.
func AuthenticatedUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
