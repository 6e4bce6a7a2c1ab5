package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/petitionhub/petitiondb/internal/middleware"
	"github.com/petitionhub/petitiondb/internal/services"
	"github.com/petitionhub/petitiondb/internal/types"
	"github.com/petitionhub/petitiondb/internal/utils"
	"gorm.io/gorm"
)

// PetitionHandler handles petition routes
type PetitionHandler struct {
	DB *gorm.DB
}

// createPetitionRequest is the POST /petitions body
type createPetitionRequest struct {
	Title        string                                    `json:"title"`
	Description  string                                    `json:"description"`
	CategoryID   *types.FlexUint64                         `json:"categoryId"`
	SupportTiers types.FlexList[services.SupportTierInput] `json:"supportTiers"`
}

// updatePetitionRequest is the PATCH /petitions/:id body
type updatePetitionRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	CategoryID  *types.FlexUint64 `json:"categoryId"`
}

// SearchPetitions handles GET /api/v1/petitions
// @Summary Search petitions
// @Description List petitions matching the filter, sorted and paginated
// @Tags Petitions
// @Produce json
// @Param q query string false "Substring matched against title and description"
// @Param categoryIds query []int false "Category ids, repeated or comma-separated"
// @Param supportingCost query number false "Maximum cost of the cheapest qualifying tier"
// @Param ownerId query int false "Petitions owned by this user"
// @Param supporterId query int false "Petitions supported by this user"
// @Param sortBy query string false "CREATED_ASC CREATED_DESC ALPHABETICAL_ASC ALPHABETICAL_DESC COST_ASC COST_DESC"
// @Param startIndex query int false "1-based index of the first row returned"
// @Param count query int false "Maximum number of rows returned"
// @Success 200 {object} services.PetitionPage
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions [get]
func (h *PetitionHandler) SearchPetitions(c *fiber.Ctx) error {
	filter, err := parsePetitionFilter(c)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	page, err := services.SearchPetitions(h.DB, filter)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, page, fiber.StatusOK)
}

// GetPetition handles GET /api/v1/petitions/:id
// @Summary Get a petition
// @Description Full detail of one petition including tiers and money raised
// @Tags Petitions
// @Produce json
// @Param id path int true "Petition ID"
// @Success 200 {object} services.PetitionDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions/{id} [get]
func (h *PetitionHandler) GetPetition(c *fiber.Ctx) error {
	petitionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	detail, err := services.GetPetition(h.DB, petitionID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, detail, fiber.StatusOK)
}

// CreatePetition handles POST /api/v1/petitions
// @Summary Create a petition
// @Description Create a petition with one to three support tiers
// @Tags Petitions
// @Accept json
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Param petition body createPetitionRequest true "Petition"
// @Success 201 {object} map[string]int64
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions [post]
func (h *PetitionHandler) CreatePetition(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	var req createPetitionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	if req.Title == "" || req.Description == "" || req.CategoryID == nil {
		return utils.ErrorResponse(c, "title, description and categoryId are required", fiber.StatusBadRequest, "validation")
	}

	petitionID, err := services.CreatePetition(h.DB, user.ID, req.Title, req.Description, req.CategoryID.Int64(), req.SupportTiers.Slice())
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"petitionId": petitionID}, fiber.StatusCreated)
}

// UpdatePetition handles PATCH /api/v1/petitions/:id
// @Summary Update a petition
// @Description Change title, description or category of an owned petition
// @Tags Petitions
// @Accept json
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Param id path int true "Petition ID"
// @Param petition body updatePetitionRequest true "Fields to change"
// @Success 200 {string} string "OK"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions/{id} [patch]
func (h *PetitionHandler) UpdatePetition(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	petitionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	var req updatePetitionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	if req.Title != nil && *req.Title == "" {
		return utils.ErrorResponse(c, "title must not be empty", fiber.StatusBadRequest, "validation")
	}
	if req.Description != nil && *req.Description == "" {
		return utils.ErrorResponse(c, "description must not be empty", fiber.StatusBadRequest, "validation")
	}

	input := services.UpdatePetitionInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.CategoryID != nil {
		categoryID := req.CategoryID.Int64()
		input.CategoryID = &categoryID
	}

	if err := services.UpdatePetition(h.DB, user.ID, petitionID, input); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// DeletePetition handles DELETE /api/v1/petitions/:id
// @Summary Delete a petition
// @Description Delete an owned petition that has no supporters
// @Tags Petitions
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Param id path int true "Petition ID"
// @Success 200 {string} string "OK"
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions/{id} [delete]
func (h *PetitionHandler) DeletePetition(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	petitionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	if err := services.DeletePetition(h.DB, user.ID, petitionID); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// GetCategories handles GET /api/v1/petitions/categories
// @Summary List categories
// @Description All petition categories
// @Tags Petitions
// @Produce json
// @Success 200 {array} models.Category
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /petitions/categories [get]
func (h *PetitionHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := services.GetCategories(h.DB)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, categories, fiber.StatusOK)
}
