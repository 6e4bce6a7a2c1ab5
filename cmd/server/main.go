package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/petitionhub/petitiondb/internal/config"
	"github.com/petitionhub/petitiondb/internal/database"
	"github.com/petitionhub/petitiondb/internal/handlers"
	"github.com/petitionhub/petitiondb/internal/middleware"
	"github.com/petitionhub/petitiondb/internal/services"
	"gorm.io/gorm"

	_ "github.com/petitionhub/petitiondb/docs/api" // Swagger docs
)

// @title PetitionDB API
// @version 1.0.0
// @description Go Fiber petition platform backend with multi-database support
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/petitionhub/petitiondb

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:4941
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey TokenAuth
// @in header
// @name X-Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	app := NewApp(cfg, db)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// NewApp builds the Fiber application with all middleware and routes.
func NewApp(cfg *config.Config, db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("petitiondb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api/v1
	api := app.Group("/api/v1")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	petitionHandler := &handlers.PetitionHandler{DB: db}
	tierHandler := &handlers.SupportTierHandler{DB: db}
	supporterHandler := &handlers.SupporterHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db}
	imageHandler := &handlers.ImageHandler{DB: db, ImageDir: cfg.ImageDir}

	// Health
	api.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(cfg, db)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// User routes
	api.Post("/users/register", userHandler.Register)
	api.Post("/users/login", userHandler.Login)
	api.Post("/users/logout", middleware.RequireAuth(db), userHandler.Logout)
	api.Get("/users/:id", middleware.OptionalAuth(db), userHandler.GetUser)
	api.Patch("/users/:id", middleware.RequireAuth(db), userHandler.UpdateUser)
	api.Get("/users/:id/image", imageHandler.GetUserImage)
	api.Put("/users/:id/image", middleware.RequireAuth(db), imageHandler.SetUserImage)
	api.Delete("/users/:id/image", middleware.RequireAuth(db), imageHandler.DeleteUserImage)

	// Petition routes
	api.Get("/petitions", petitionHandler.SearchPetitions)
	api.Get("/petitions/categories", petitionHandler.GetCategories)
	api.Post("/petitions", middleware.RequireAuth(db), petitionHandler.CreatePetition)
	api.Get("/petitions/:id", petitionHandler.GetPetition)
	api.Patch("/petitions/:id", middleware.RequireAuth(db), petitionHandler.UpdatePetition)
	api.Delete("/petitions/:id", middleware.RequireAuth(db), petitionHandler.DeletePetition)
	api.Get("/petitions/:id/image", imageHandler.GetPetitionImage)
	api.Put("/petitions/:id/image", middleware.RequireAuth(db), imageHandler.SetPetitionImage)

	// Support tier routes
	api.Put("/petitions/:id/supportTiers", middleware.RequireAuth(db), tierHandler.AddSupportTier)
	api.Patch("/petitions/:id/supportTiers/:tierId", middleware.RequireAuth(db), tierHandler.UpdateSupportTier)
	api.Delete("/petitions/:id/supportTiers/:tierId", middleware.RequireAuth(db), tierHandler.DeleteSupportTier)

	// Supporter routes
	api.Get("/petitions/:id/supporters", supporterHandler.GetSupporters)
	api.Post("/petitions/:id/supporters", middleware.RequireAuth(db), supporterHandler.AddSupporter)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	return app
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      "unknown",
	})
}
