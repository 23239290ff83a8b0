package routes

import (
	"github.com/gofiber/fiber/v2"

	"FasoLink/internal/handlers"
	"FasoLink/internal/middleware"
	"FasoLink/internal/models"
)

func SetupProfileRoutes(app *fiber.App) {
	profile := app.Group("/api/profile", middleware.Protected())

	profile.Get("/", handlers.GetMyProfile)
	profile.Put("/", handlers.UpdateProfile)
	profile.Post("/avatar", handlers.UploadAvatar)

	// Artisan portfolio
	profile.Post("/portfolio", middleware.RequireRole(models.RoleArtisan), handlers.UploadPortfolioPhoto)
	profile.Delete("/portfolio/:id", middleware.RequireRole(models.RoleArtisan), handlers.DeletePortfolioPhoto)

	// Public artisan directory
	artisans := app.Group("/api/artisans")
	artisans.Get("/", handlers.SearchArtisans)
	artisans.Get("/:id", handlers.GetArtisanProfile)
}
