package routes

import (
	"github.com/KevinT25/GameTracker-Backend/backend/achievements"
	"github.com/KevinT25/GameTracker-Backend/backend/catalog"
	"github.com/KevinT25/GameTracker-Backend/backend/config"
	"github.com/KevinT25/GameTracker-Backend/backend/controllers"
	"github.com/KevinT25/GameTracker-Backend/backend/middleware"
	"github.com/KevinT25/GameTracker-Backend/backend/ratelimit"
	"github.com/KevinT25/GameTracker-Backend/backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps carries the shared collaborators so tests can swap them.
type Deps struct {
	Logger  *logrus.Logger
	Limiter *ratelimit.Limiter
	Engine  *achievements.Engine
	Catalog catalog.Catalog
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Deps) {
	interactions := services.NewInteractions(db)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, deps.Engine, deps.Logger)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Get("/api/user/genre", authMiddleware, userController.GetGenre)
	app.Put("/api/user/genre", authMiddleware, userController.SetGenre)
	app.Delete("/api/user/:id", authMiddleware, userController.Delete)
	app.Get("/api/users", authMiddleware, userController.List)
	app.Get("/api/users/:id", authMiddleware, userController.GetByID)

	// Achievement routes
	achievementController := controllers.NewAchievementController(db, deps.Engine)
	app.Get("/api/achievements", achievementController.ListCatalog)
	app.Get("/api/user/achievements", authMiddleware, achievementController.ListUnlocked)

	// Progress routes
	progressController := controllers.NewProgressController(db, deps.Catalog, deps.Engine, deps.Logger)
	progress := app.Group("/api/progress", authMiddleware)
	progress.Get("/", progressController.List)
	progress.Get("/stats", progressController.Stats)
	progress.Put("/games/:gameId", progressController.Upsert)
	progress.Get("/games/:gameId", progressController.Get)
	progress.Delete("/games/:gameId", progressController.Delete)

	// Post routes
	postController := controllers.NewPostController(db, interactions, deps.Limiter, deps.Logger)
	postInteractions := controllers.NewInteractionController(
		interactions, deps.Engine, deps.Limiter, deps.Logger, postController.LoadSubject)
	posts := app.Group("/api/posts")
	posts.Get("/", postController.List)
	posts.Get("/:id", postController.Get)
	posts.Post("/", authMiddleware, postController.Create)
	posts.Put("/:id", authMiddleware, postController.Edit)
	posts.Delete("/:id", authMiddleware, postController.Delete)
	registerInteractionRoutes(posts, authMiddleware, postInteractions)

	// Review routes
	reviewController := controllers.NewReviewController(
		db, interactions, deps.Catalog, deps.Engine, deps.Limiter, deps.Logger)
	reviewInteractions := controllers.NewInteractionController(
		interactions, deps.Engine, deps.Limiter, deps.Logger, reviewController.LoadSubject)
	reviews := app.Group("/api/reviews")
	reviews.Get("/", reviewController.List)
	reviews.Get("/game/:id", reviewController.ListByGame)
	reviews.Post("/", authMiddleware, reviewController.Create)
	reviews.Put("/:id", authMiddleware, reviewController.Edit)
	reviews.Delete("/:id", authMiddleware, reviewController.Delete)
	registerInteractionRoutes(reviews, authMiddleware, reviewInteractions)
}

// registerInteractionRoutes mounts the shared vote/comment/reply/report
// endpoints under an entity group. Both posts and reviews get the exact
// same surface.
func registerInteractionRoutes(group fiber.Router, auth fiber.Handler, ic *controllers.InteractionController) {
	group.Post("/:id/vote", auth, ic.Vote)
	group.Post("/:id/comments", auth, ic.AddComment)
	group.Put("/:id/comments/:commentId", auth, ic.EditComment)
	group.Delete("/:id/comments/:commentId", auth, ic.DeleteComment)
	group.Post("/:id/comments/:commentId/replies", auth, ic.AddReply)
	group.Put("/:id/comments/:commentId/replies/:replyId", auth, ic.EditReply)
	group.Delete("/:id/comments/:commentId/replies/:replyId", auth, ic.DeleteReply)
	group.Post("/:id/report", auth, ic.Report)
	group.Get("/:id/reports", auth, middleware.AdminMiddleware(), ic.ListReports)
}
