package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/petitionhub/petitiondb/internal/middleware"
	"github.com/petitionhub/petitiondb/internal/services"
	"github.com/petitionhub/petitiondb/internal/types"
	"github.com/petitionhub/petitiondb/internal/utils"
	"gorm.io/gorm"
)

// SupporterHandler handles supporter routes
type SupporterHandler struct {
	DB *gorm.DB
}

// addSupporterRequest is the POST supporter body
type addSupporterRequest struct {
	SupportTierID *types.FlexUint64 `json:"supportTierId"`
	Message       *string           `json:"message"`
}

// GetSupporters handles GET /api/v1/petitions/:id/supporters
// @Summary List supporters
// @Description All pledges for a petition, newest first
// @Tags Supporters
// @Produce json
// @Param id path int true "Petition ID"
// @Success 200 {array} services.SupporterView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions/{id}/supporters [get]
func (h *SupporterHandler) GetSupporters(c *fiber.Ctx) error {
	petitionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	supporters, err := services.GetSupporters(h.DB, petitionID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, supporters, fiber.StatusOK)
}

// AddSupporter handles POST /api/v1/petitions/:id/supporters
// @Summary Support a petition
// @Description Pledge at one of the petition's tiers
// @Tags Supporters
// @Accept json
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Param id path int true "Petition ID"
// @Param supporter body addSupporterRequest true "Pledge"
// @Success 201 {string} string "Created"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions/{id}/supporters [post]
func (h *SupporterHandler) AddSupporter(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	petitionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	var req addSupporterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	if req.SupportTierID == nil {
		return utils.ErrorResponse(c, "supportTierId is required", fiber.StatusBadRequest, "validation")
	}

	if _, err := services.AddSupporter(h.DB, user.ID, petitionID, req.SupportTierID.Int64(), req.Message); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}
