package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/petitionhub/petitiondb/internal/middleware"
	"github.com/petitionhub/petitiondb/internal/services"
	"github.com/petitionhub/petitiondb/internal/utils"
	"gorm.io/gorm"
)

// SupportTierHandler handles support tier routes
type SupportTierHandler struct {
	DB *gorm.DB
}

// updateSupportTierRequest is the PATCH tier body
type updateSupportTierRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Cost        *float64 `json:"cost"`
}

// AddSupportTier handles PUT /api/v1/petitions/:id/supportTiers
// @Summary Add a support tier
// @Description Append a tier to an owned petition with fewer than three tiers
// @Tags SupportTiers
// @Accept json
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Param id path int true "Petition ID"
// @Param tier body services.SupportTierInput true "Support tier"
// @Success 201 {object} map[string]int64
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions/{id}/supportTiers [put]
func (h *SupportTierHandler) AddSupportTier(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	petitionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	var req services.SupportTierInput
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	if req.Title == "" || req.Description == "" {
		return utils.ErrorResponse(c, "title and description are required", fiber.StatusBadRequest, "validation")
	}

	tierID, err := services.AddSupportTier(h.DB, user.ID, petitionID, req)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"supportTierId": tierID}, fiber.StatusCreated)
}

// UpdateSupportTier handles PATCH /api/v1/petitions/:id/supportTiers/:tierId
// @Summary Update a support tier
// @Description Change a tier of an owned petition while it has no supporters
// @Tags SupportTiers
// @Accept json
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Param id path int true "Petition ID"
// @Param tierId path int true "Support tier ID"
// @Param tier body updateSupportTierRequest true "Fields to change"
// @Success 200 {string} string "OK"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions/{id}/supportTiers/{tierId} [patch]
func (h *SupportTierHandler) UpdateSupportTier(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	petitionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	tierID, err := parseIDParam(c, "tierId")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	var req updateSupportTierRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	if req.Title != nil && *req.Title == "" {
		return utils.ErrorResponse(c, "title must not be empty", fiber.StatusBadRequest, "validation")
	}
	if req.Cost != nil && *req.Cost < 0 {
		return utils.ErrorResponse(c, "cost must not be negative", fiber.StatusBadRequest, "validation")
	}

	input := services.UpdateSupportTierInput{
		Title:       req.Title,
		Description: req.Description,
		Cost:        req.Cost,
	}
	if err := services.UpdateSupportTier(h.DB, user.ID, petitionID, tierID, input); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// DeleteSupportTier handles DELETE /api/v1/petitions/:id/supportTiers/:tierId
// @Summary Delete a support tier
// @Description Remove a tier that has no supporters and is not the last one
// @Tags SupportTiers
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Param id path int true "Petition ID"
// @Param tierId path int true "Support tier ID"
// @Success 200 {string} string "OK"
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions/{id}/supportTiers/{tierId} [delete]
func (h *SupportTierHandler) DeleteSupportTier(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	petitionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	tierID, err := parseIDParam(c, "tierId")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	if err := services.DeleteSupportTier(h.DB, user.ID, petitionID, tierID); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
