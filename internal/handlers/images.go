package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/petitionhub/petitiondb/internal/middleware"
	"github.com/petitionhub/petitiondb/internal/services"
	"github.com/petitionhub/petitiondb/internal/utils"
	"gorm.io/gorm"
)

// ImageHandler handles petition and user image routes
type ImageHandler struct {
	DB       *gorm.DB
	ImageDir string
}

// GetPetitionImage handles GET /api/v1/petitions/:id/image
// @Summary Get a petition image
// @Tags Images
// @Produce png,jpeg,gif
// @Param id path int true "Petition ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions/{id}/image [get]
func (h *ImageHandler) GetPetitionImage(c *fiber.Ctx) error {
	petitionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	data, contentType, err := services.GetPetitionImage(h.DB, h.ImageDir, petitionID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(data)
}

// SetPetitionImage handles PUT /api/v1/petitions/:id/image
// @Summary Set a petition image
// @Description Store the hero image for an owned petition; 201 on first upload, 200 on replace
// @Tags Images
// @Accept png,jpeg,gif
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Param id path int true "Petition ID"
// @Success 200 {string} string "OK"
// @Success 201 {string} string "Created"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions/{id}/image [put]
func (h *ImageHandler) SetPetitionImage(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	petitionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	created, err := services.SetPetitionImage(h.DB, h.ImageDir, user.ID, petitionID, c.Get(fiber.HeaderContentType), c.Body())
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	if created {
		return c.SendStatus(fiber.StatusCreated)
	}
	return c.SendStatus(fiber.StatusOK)
}

// GetUserImage handles GET /api/v1/users/:id/image
// @Summary Get a user image
// @Tags Images
// @Produce png,jpeg,gif
// @Param id path int true "User ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users/{id}/image [get]
func (h *ImageHandler) GetUserImage(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	data, contentType, err := services.GetUserImage(h.DB, h.ImageDir, userID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(data)
}

// SetUserImage handles PUT /api/v1/users/:id/image
// @Summary Set a user image
// @Description Store the caller's profile image; 201 on first upload, 200 on replace
// @Tags Images
// @Accept png,jpeg,gif
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Param id path int true "User ID"
// @Success 200 {string} string "OK"
// @Success 201 {string} string "Created"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users/{id}/image [put]
func (h *ImageHandler) SetUserImage(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	created, err := services.SetUserImage(h.DB, h.ImageDir, user.ID, userID, c.Get(fiber.HeaderContentType), c.Body())
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	if created {
		return c.SendStatus(fiber.StatusCreated)
	}
	return c.SendStatus(fiber.StatusOK)
}

// DeleteUserImage handles DELETE /api/v1/users/:id/image
// @Summary Delete a user image
// @Tags Images
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Param id path int true "User ID"
// @Success 200 {string} string "OK"
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users/{id}/image [delete]
func (h *ImageHandler) DeleteUserImage(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	if err := services.DeleteUserImage(h.DB, h.ImageDir, user.ID, userID); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
