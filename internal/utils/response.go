package utils

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/petitionhub/petitiondb/internal/types"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response matching Node.js format
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// UnauthorizedResponse sends a 401 response for missing or invalid tokens
func UnauthorizedResponse(c *fiber.Ctx) error {
	return ErrorResponse(c, "Unauthorized", fiber.StatusUnauthorized, "authorization")
}

// DomainErrorResponse maps a service-layer error onto the HTTP response.
// Validation -> 400, not found -> 404, authorization -> 403, conflict -> 409;
// anything else is a 500 with the detail kept out of the body.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	kind := types.KindOf(err)
	switch kind {
	case types.KindValidation:
		return ErrorResponse(c, err.Error(), fiber.StatusBadRequest, string(kind))
	case types.KindNotFound:
		return ErrorResponse(c, err.Error(), fiber.StatusNotFound, string(kind))
	case types.KindAuthorization:
		return ErrorResponse(c, err.Error(), fiber.StatusForbidden, string(kind))
	case types.KindConflict:
		return ErrorResponse(c, err.Error(), fiber.StatusConflict, string(kind))
	default:
		log.Printf("Internal error on %s: %v", c.OriginalURL(), err)
		return ErrorResponse(c, "Internal Server Error", fiber.StatusInternalServerError, string(types.KindStorage))
	}
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}
