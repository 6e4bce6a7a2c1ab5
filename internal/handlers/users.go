package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/petitionhub/petitiondb/internal/middleware"
	"github.com/petitionhub/petitiondb/internal/services"
	"github.com/petitionhub/petitiondb/internal/types"
	"github.com/petitionhub/petitiondb/internal/utils"
	"gorm.io/gorm"
)

// UserHandler handles user account routes
type UserHandler struct {
	DB *gorm.DB
}

// registerRequest is the POST /users/register body
type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// loginRequest is the POST /users/login body
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// updateUserRequest is the PATCH /users/:id body
type updateUserRequest struct {
	Email           *string `json:"email"`
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Password        *string `json:"password"`
	CurrentPassword *string `json:"currentPassword"`
}

// Register handles POST /api/v1/users/register
// @Summary Register
// @Description Create a new user account
// @Tags Users
// @Accept json
// @Produce json
// @Param user body registerRequest true "Account"
// @Success 201 {object} map[string]int64
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users/register [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" || req.Password == "" {
		return utils.ErrorResponse(c, "email, firstName, lastName and password are required", fiber.StatusBadRequest, "validation")
	}

	userID, err := services.RegisterUser(h.DB, req.Email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"userId": userID}, fiber.StatusCreated)
}

// Login handles POST /api/v1/users/login
// @Summary Log in
// @Description Exchange credentials for a bearer token
// @Tags Users
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users/login [post]
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	if req.Email == "" || req.Password == "" {
		return utils.ErrorResponse(c, "email and password are required", fiber.StatusBadRequest, "validation")
	}

	userID, token, err := services.LoginUser(h.DB, req.Email, req.Password)
	if err != nil {
		// Bad credentials are a 401 here, not a 403
		if types.IsKind(err, types.KindAuthorization) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "authorization")
		}
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"userId": userID, "token": token}, fiber.StatusOK)
}

// Logout handles POST /api/v1/users/logout
// @Summary Log out
// @Description Invalidate the caller's bearer token
// @Tags Users
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Success 200 {string} string "OK"
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users/logout [post]
func (h *UserHandler) Logout(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)
	if err := services.LogoutUser(h.DB, user.ID); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// GetUser handles GET /api/v1/users/:id
// @Summary Get a user
// @Description Public view of a user; email included only for the caller's own record
// @Tags Users
// @Produce json
// @Param X-Authorization header string false "Auth token"
// @Param id path int true "User ID"
// @Success 200 {object} services.UserView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	var requesterID int64
	if requester := middleware.AuthenticatedUser(c); requester != nil {
		requesterID = requester.ID
	}

	view, err := services.GetUser(h.DB, userID, requesterID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// UpdateUser handles PATCH /api/v1/users/:id
// @Summary Update a user
// @Description Change the caller's own account details
// @Tags Users
// @Accept json
// @Produce json
// @Param X-Authorization header string true "Auth token"
// @Param id path int true "User ID"
// @Param user body updateUserRequest true "Fields to change"
// @Success 200 {string} string "OK"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "validation")
	}
	if req.FirstName != nil && *req.FirstName == "" {
		return utils.ErrorResponse(c, "firstName must not be empty", fiber.StatusBadRequest, "validation")
	}
	if req.LastName != nil && *req.LastName == "" {
		return utils.ErrorResponse(c, "lastName must not be empty", fiber.StatusBadRequest, "validation")
	}

	input := services.UpdateUserInput{
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		CurrentPassword: req.CurrentPassword,
	}
	if err := services.UpdateUser(h.DB, user.ID, userID, input); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
