package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/petitionhub/petitiondb/internal/database"
	"github.com/petitionhub/petitiondb/internal/handlers"
	"github.com/petitionhub/petitiondb/internal/middleware"
	"github.com/petitionhub/petitiondb/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// setupTestApp wires the full route table against the test database
func setupTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()
	app := fiber.New()

	petitionHandler := &handlers.PetitionHandler{DB: db}
	tierHandler := &handlers.SupportTierHandler{DB: db}
	supporterHandler := &handlers.SupporterHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db}
	imageHandler := &handlers.ImageHandler{DB: db, ImageDir: t.TempDir()}

	api := app.Group("/api/v1")
	api.Post("/users/register", userHandler.Register)
	api.Post("/users/login", userHandler.Login)
	api.Post("/users/logout", middleware.RequireAuth(db), userHandler.Logout)
	api.Get("/users/:id", middleware.OptionalAuth(db), userHandler.GetUser)
	api.Patch("/users/:id", middleware.RequireAuth(db), userHandler.UpdateUser)
	api.Get("/users/:id/image", imageHandler.GetUserImage)
	api.Put("/users/:id/image", middleware.RequireAuth(db), imageHandler.SetUserImage)
	api.Delete("/users/:id/image", middleware.RequireAuth(db), imageHandler.DeleteUserImage)
	api.Get("/petitions", petitionHandler.SearchPetitions)
	api.Get("/petitions/categories", petitionHandler.GetCategories)
	api.Post("/petitions", middleware.RequireAuth(db), petitionHandler.CreatePetition)
	api.Get("/petitions/:id", petitionHandler.GetPetition)
	api.Patch("/petitions/:id", middleware.RequireAuth(db), petitionHandler.UpdatePetition)
	api.Delete("/petitions/:id", middleware.RequireAuth(db), petitionHandler.DeletePetition)
	api.Get("/petitions/:id/image", imageHandler.GetPetitionImage)
	api.Put("/petitions/:id/image", middleware.RequireAuth(db), imageHandler.SetPetitionImage)
	api.Put("/petitions/:id/supportTiers", middleware.RequireAuth(db), tierHandler.AddSupportTier)
	api.Patch("/petitions/:id/supportTiers/:tierId", middleware.RequireAuth(db), tierHandler.UpdateSupportTier)
	api.Delete("/petitions/:id/supportTiers/:tierId", middleware.RequireAuth(db), tierHandler.DeleteSupportTier)
	api.Get("/petitions/:id/supporters", supporterHandler.GetSupporters)
	api.Post("/petitions/:id/supporters", middleware.RequireAuth(db), supporterHandler.AddSupporter)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, url, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Authorization", token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	resp.Body.Close()
	return resp.StatusCode, decoded
}

func registerAndLogin(t *testing.T, app *fiber.App, email string) (int64, string) {
	t.Helper()
	status, _ := doJSON(t, app, "POST", "/api/v1/users/register", "", map[string]string{
		"email": email, "firstName": "Test", "lastName": "User", "password": "password1",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Register: expected 201, got %d", status)
	}
	status, body := doJSON(t, app, "POST", "/api/v1/users/login", "", map[string]string{
		"email": email, "password": "password1",
	})
	if status != fiber.StatusOK {
		t.Fatalf("Login: expected 200, got %d", status)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("Login returned no token")
	}
	userID, _ := body["userId"].(float64)
	return int64(userID), token
}

func seedCategory(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	return category.ID
}

// TestPetitionLifecycleOverHTTP walks register, create, read, patch, delete
func TestPetitionLifecycleOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupTestApp(t, db)
	catID := seedCategory(t, db, "Animals")
	_, token := registerAndLogin(t, app, "owner@example.com")

	// Unauthenticated create is rejected
	status, _ := doJSON(t, app, "POST", "/api/v1/petitions", "", map[string]any{
		"title": "Save the bees", "description": "d", "categoryId": catID,
		"supportTiers": []map[string]any{{"title": "Bronze", "description": "d", "cost": 5}},
	})
	if status != fiber.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", status)
	}

	status, body := doJSON(t, app, "POST", "/api/v1/petitions", token, map[string]any{
		"title": "Save the bees", "description": "d", "categoryId": catID,
		"supportTiers": []map[string]any{{"title": "Bronze", "description": "d", "cost": 5}},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Create: expected 201, got %d (%v)", status, body)
	}
	if petitionID := int64(body["petitionId"].(float64)); petitionID != 1 {
		t.Errorf("Expected first petition id 1, got %d", petitionID)
	}

	status, body = doJSON(t, app, "GET", "/api/v1/petitions/1", "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("Get: expected 200, got %d", status)
	}
	if body["title"] != "Save the bees" {
		t.Errorf("Unexpected title %v", body["title"])
	}

	// Duplicate title is a conflict
	status, _ = doJSON(t, app, "POST", "/api/v1/petitions", token, map[string]any{
		"title": "Save the bees", "description": "d", "categoryId": catID,
		"supportTiers": []map[string]any{{"title": "Bronze", "description": "d", "cost": 5}},
	})
	if status != fiber.StatusConflict {
		t.Errorf("Duplicate create: expected 409, got %d", status)
	}

	// Stranger cannot patch
	_, otherToken := registerAndLogin(t, app, "other@example.com")
	status, _ = doJSON(t, app, "PATCH", "/api/v1/petitions/1", otherToken, map[string]any{"title": "Hijack"})
	if status != fiber.StatusForbidden {
		t.Errorf("Foreign patch: expected 403, got %d", status)
	}

	status, _ = doJSON(t, app, "PATCH", "/api/v1/petitions/1", token, map[string]any{"title": "Save all bees"})
	if status != fiber.StatusOK {
		t.Errorf("Patch: expected 200, got %d", status)
	}

	status, _ = doJSON(t, app, "DELETE", "/api/v1/petitions/1", token, nil)
	if status != fiber.StatusOK {
		t.Errorf("Delete: expected 200, got %d", status)
	}
	status, _ = doJSON(t, app, "GET", "/api/v1/petitions/1", "", nil)
	if status != fiber.StatusNotFound {
		t.Errorf("Get after delete: expected 404, got %d", status)
	}
}

// TestSearchQueryValidation exercises the query-string parsing
func TestSearchQueryValidation(t *testing.T) {
	db := setupTestDB(t)
	app := setupTestApp(t, db)

	for _, url := range []string{
		"/api/v1/petitions?startIndex=abc",
		"/api/v1/petitions?count=-1",
		"/api/v1/petitions?supportingCost=notanumber",
		"/api/v1/petitions?categoryIds=1,x",
		"/api/v1/petitions?sortBy=WRONG",
	} {
		status, _ := doJSON(t, app, "GET", url, "", nil)
		if status != fiber.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", url, status)
		}
	}

	status, body := doJSON(t, app, "GET", "/api/v1/petitions", "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("Empty search: expected 200, got %d", status)
	}
	if int(body["count"].(float64)) != 0 {
		t.Errorf("Expected empty count, got %v", body["count"])
	}
}

// TestSupporterFlowOverHTTP exercises pledge creation and listing
func TestSupporterFlowOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupTestApp(t, db)
	catID := seedCategory(t, db, "Animals")
	_, ownerToken := registerAndLogin(t, app, "owner@example.com")
	_, backerToken := registerAndLogin(t, app, "backer@example.com")

	status, body := doJSON(t, app, "POST", "/api/v1/petitions", ownerToken, map[string]any{
		"title": "Alpha", "description": "d", "categoryId": catID,
		"supportTiers": []map[string]any{{"title": "Bronze", "description": "d", "cost": 5}},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Create: expected 201, got %d (%v)", status, body)
	}

	var tier models.SupportTier
	if err := db.First(&tier).Error; err != nil {
		t.Fatalf("Failed to load tier: %v", err)
	}

	// Owner cannot support their own petition
	status, _ = doJSON(t, app, "POST", "/api/v1/petitions/1/supporters", ownerToken, map[string]any{
		"supportTierId": tier.ID,
	})
	if status != fiber.StatusConflict {
		t.Errorf("Own pledge: expected 409, got %d", status)
	}

	status, _ = doJSON(t, app, "POST", "/api/v1/petitions/1/supporters", backerToken, map[string]any{
		"supportTierId": tier.ID, "message": "go team",
	})
	if status != fiber.StatusCreated {
		t.Errorf("Pledge: expected 201, got %d", status)
	}

	// Same tier twice is a conflict
	status, _ = doJSON(t, app, "POST", "/api/v1/petitions/1/supporters", backerToken, map[string]any{
		"supportTierId": tier.ID,
	})
	if status != fiber.StatusConflict {
		t.Errorf("Duplicate pledge: expected 409, got %d", status)
	}

	req := httptest.NewRequest("GET", "/api/v1/petitions/1/supporters", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to list supporters: %v", err)
	}
	defer resp.Body.Close()
	var supporters []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&supporters); err != nil {
		t.Fatalf("Failed to decode supporters: %v", err)
	}
	if len(supporters) != 1 {
		t.Fatalf("Expected 1 supporter, got %d", len(supporters))
	}
	if supporters[0]["message"] != "go team" {
		t.Errorf("Unexpected message %v", supporters[0]["message"])
	}

	// Petition with a supporter cannot be deleted
	status, _ = doJSON(t, app, "DELETE", "/api/v1/petitions/1", ownerToken, nil)
	if status != fiber.StatusConflict {
		t.Errorf("Delete with supporters: expected 409, got %d", status)
	}
}

// TestTierRoutesOverHTTP exercises the tier ceiling and only-tier rules
func TestTierRoutesOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupTestApp(t, db)
	catID := seedCategory(t, db, "Animals")
	_, token := registerAndLogin(t, app, "owner@example.com")

	status, _ := doJSON(t, app, "POST", "/api/v1/petitions", token, map[string]any{
		"title": "Alpha", "description": "d", "categoryId": catID,
		"supportTiers": []map[string]any{{"title": "Bronze", "description": "d", "cost": 5}},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Create: expected 201, got %d", status)
	}

	// The only tier cannot be deleted
	var tier models.SupportTier
	if err := db.First(&tier).Error; err != nil {
		t.Fatalf("Failed to load tier: %v", err)
	}
	status, _ = doJSON(t, app, "DELETE", "/api/v1/petitions/1/supportTiers/1", token, nil)
	if status != fiber.StatusConflict {
		t.Errorf("Only-tier delete: expected 409, got %d", status)
	}

	// Two more tiers fit, a fourth does not
	for _, title := range []string{"Silver", "Gold"} {
		status, _ = doJSON(t, app, "PUT", "/api/v1/petitions/1/supportTiers", token, map[string]any{
			"title": title, "description": "d", "cost": 10,
		})
		if status != fiber.StatusCreated {
			t.Fatalf("Add tier %s: expected 201, got %d", title, status)
		}
	}
	status, _ = doJSON(t, app, "PUT", "/api/v1/petitions/1/supportTiers", token, map[string]any{
		"title": "Platinum", "description": "d", "cost": 10,
	})
	if status != fiber.StatusConflict {
		t.Errorf("Fourth tier: expected 409, got %d", status)
	}
}

// TestUserRoutesOverHTTP covers email visibility and logout
func TestUserRoutesOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupTestApp(t, db)
	userID, token := registerAndLogin(t, app, "me@example.com")
	if userID != 1 {
		t.Fatalf("Expected first user id 1, got %d", userID)
	}

	status, body := doJSON(t, app, "GET", "/api/v1/users/1", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Get self: expected 200, got %d", status)
	}
	if body["email"] != "me@example.com" {
		t.Errorf("Expected own email, got %v", body["email"])
	}

	status, body = doJSON(t, app, "GET", "/api/v1/users/1", "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("Get public: expected 200, got %d", status)
	}
	if _, present := body["email"]; present {
		t.Error("Email must be hidden from strangers")
	}

	status, _ = doJSON(t, app, "POST", "/api/v1/users/logout", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Logout: expected 200, got %d", status)
	}

	// Token is dead after logout
	status, _ = doJSON(t, app, "POST", "/api/v1/users/logout", token, nil)
	if status != fiber.StatusUnauthorized {
		t.Errorf("Stale token: expected 401, got %d", status)
	}
}

func TestCreatePetitionAcceptsSingleTierObject(t *testing.T) {
	db := setupTestDB(t)
	app := setupTestApp(t, db)
	catID := seedCategory(t, db, "Animals")
	_, token := registerAndLogin(t, app, "solo@example.com")

	// A lone tier object decodes the same as a one-element array
	status, body := doJSON(t, app, "POST", "/api/v1/petitions", token, map[string]any{
		"title": "Single tier", "description": "d", "categoryId": catID,
		"supportTiers": map[string]any{"title": "Bronze", "description": "d", "cost": 5},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Create: expected 201, got %d (%v)", status, body)
	}
}

func TestCreatePetitionDecimalCostOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	app := setupTestApp(t, db)
	catID := seedCategory(t, db, "Animals")
	_, token := registerAndLogin(t, app, "decimal@example.com")

	status, body := doJSON(t, app, "POST", "/api/v1/petitions", token, map[string]any{
		"title": "Decimal tier", "description": "d", "categoryId": catID,
		"supportTiers": []map[string]any{{"title": "Bronze", "description": "d", "cost": 5.50}},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Create with decimal cost: expected 201, got %d (%v)", status, body)
	}

	status, _ = doJSON(t, app, "POST", "/api/v1/petitions", token, map[string]any{
		"title": "Negative tier", "description": "d", "categoryId": catID,
		"supportTiers": []map[string]any{{"title": "Bronze", "description": "d", "cost": -1}},
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("Negative cost: expected 400, got %d", status)
	}

	status, _ = doJSON(t, app, "POST", "/api/v1/petitions", token, map[string]any{
		"title": "Blank tier title", "description": "d", "categoryId": catID,
		"supportTiers": []map[string]any{{"title": "", "description": "d", "cost": 5}},
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("Blank tier title: expected 400, got %d", status)
	}
}
