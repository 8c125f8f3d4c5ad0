package main

import (
	"log"

	"github.com/KevinT25/GameTracker-Backend/backend/achievements"
	"github.com/KevinT25/GameTracker-Backend/backend/catalog"
	"github.com/KevinT25/GameTracker-Backend/backend/config"
	"github.com/KevinT25/GameTracker-Backend/backend/ratelimit"
	"github.com/KevinT25/GameTracker-Backend/backend/routes"
	"github.com/KevinT25/GameTracker-Backend/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Seed the badge catalog
	if err := achievements.SeedDefaultAchievements(db); err != nil {
		log.Fatalf("Error seeding achievements: %v", err)
	}

	limiter := ratelimit.NewLimiter(cfg.ThrottleWindow)
	defer limiter.Close()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(utils.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, routes.Deps{
		Logger:  logger,
		Limiter: limiter,
		Engine:  achievements.NewEngine(db, logger),
		Catalog: catalog.NewGormCatalog(db),
	})

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
